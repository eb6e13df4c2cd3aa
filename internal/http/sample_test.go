package http

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderedSample() Sample {
	return Sample{
		Status:          200,
		DNSDone:         10 * time.Millisecond,
		ConnectDone:     30 * time.Millisecond,
		TLSDone:         60 * time.Millisecond,
		PretransferDone: 61 * time.Millisecond,
		FirstByteDone:   101 * time.Millisecond,
		TotalDone:       151 * time.Millisecond,
	}
}

func TestSample_Phases(t *testing.T) {
	p := orderedSample().Phases()

	assert.Equal(t, 10.0, p.DNS)
	assert.Equal(t, 20.0, p.TCP)
	assert.Equal(t, 30.0, p.TLS)
	assert.Equal(t, 40.0, p.TTFB)
	assert.Equal(t, 50.0, p.DataTransfer)
	assert.Equal(t, 151.0, p.Total)
	assert.Equal(t, 0.0, p.Redirect)
}

func TestSample_PhasesUseMicrosecondResolution(t *testing.T) {
	s := Sample{DNSDone: 1500*time.Microsecond + 999*time.Nanosecond}
	s.ConnectDone, s.TLSDone, s.PretransferDone, s.FirstByteDone, s.TotalDone =
		s.DNSDone, s.DNSDone, s.DNSDone, s.DNSDone, s.DNSDone

	assert.Equal(t, 1.5, s.Phases().DNS)
}

func TestSample_PhasesWithoutConnectPhase(t *testing.T) {
	// QUIC reports no connect phase: connect carries DNS and TLS absorbs the gap
	s := Sample{
		DNSDone:         5 * time.Millisecond,
		ConnectDone:     5 * time.Millisecond,
		TLSDone:         25 * time.Millisecond,
		PretransferDone: 25 * time.Millisecond,
		FirstByteDone:   45 * time.Millisecond,
		TotalDone:       50 * time.Millisecond,
	}

	p := s.Phases()
	assert.Equal(t, 0.0, p.TCP)
	assert.Equal(t, 20.0, p.TLS)
}

func TestSample_PhasesSumToTotal(t *testing.T) {
	s := orderedSample()
	p := s.Phases()

	gap := Millis(s.PretransferDone - s.TLSDone)
	sum := p.DNS + p.TCP + p.TLS + p.TTFB + p.DataTransfer + gap
	assert.InDelta(t, p.Total, sum, 0.001)
}

func TestSample_PhasesAfterRedirect(t *testing.T) {
	// final hop starts at 100ms on a fresh plaintext connection
	s := Sample{
		Status:          200,
		RedirectTime:    100 * time.Millisecond,
		DNSDone:         100 * time.Millisecond,
		ConnectDone:     120 * time.Millisecond,
		TLSDone:         120 * time.Millisecond,
		PretransferDone: 120 * time.Millisecond,
		FirstByteDone:   150 * time.Millisecond,
		TotalDone:       160 * time.Millisecond,
	}
	require.NoError(t, s.Validate())

	p := s.Phases()
	assert.Equal(t, 100.0, p.Redirect)
	assert.Equal(t, 100.0, p.DNS)
	assert.Equal(t, 20.0, p.TCP)
	assert.Equal(t, 0.0, p.TLS)
	assert.InDelta(t, p.Total, p.DNS+p.TCP+p.TLS+p.TTFB+p.DataTransfer, 0.001)

	s.DNSDone = 90 * time.Millisecond
	assert.ErrorIs(t, s.Validate(), ErrPhaseOrder, "a phase of the final hop cannot precede the redirect")
}

func TestSample_Validate(t *testing.T) {
	assert.NoError(t, orderedSample().Validate())
	assert.NoError(t, Sample{}.Validate())

	broken := orderedSample()
	broken.FirstByteDone = broken.PretransferDone - time.Millisecond
	err := broken.Validate()
	assert.True(t, errors.Is(err, ErrPhaseOrder))

	negative := orderedSample()
	negative.DNSDone = -time.Millisecond
	assert.ErrorIs(t, negative.Validate(), ErrPhaseOrder)
}

func TestSample_Outcome(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
		want   Outcome
	}{
		{"ok", Sample{Status: 200}, OutcomeSuccess},
		{"not found", Sample{Status: 404}, OutcomeNonSuccessStatus},
		{"created is not 200", Sample{Status: 201}, OutcomeNonSuccessStatus},
		{"no response", Sample{Err: errors.New("connection refused")}, OutcomeTransportFailure},
		{"broken body", Sample{Status: 200, Err: errors.New("unexpected EOF")}, OutcomeTransportFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sample.Outcome())
			assert.Equal(t, tt.want == OutcomeSuccess, tt.sample.Succeeded())
		})
	}
}

func TestSample_Redirected(t *testing.T) {
	assert.False(t, Sample{URL: "https://a"}.Redirected())
	assert.False(t, Sample{URL: "https://a", EffectiveURL: "https://a"}.Redirected())
	assert.True(t, Sample{URL: "https://a", EffectiveURL: "https://b"}.Redirected())
}
