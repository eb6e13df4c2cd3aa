package http

import (
	"errors"
	"fmt"
	"time"
)

// ErrPhaseOrder is returned by Sample.Validate when phase timestamps are not
// monotonic.
var ErrPhaseOrder = errors.New("phase timestamps out of order")

// Outcome classifies a finished trial.
type Outcome int

const (
	// OutcomeSuccess is a response with status 200
	OutcomeSuccess Outcome = iota
	// OutcomeNonSuccessStatus is a response with any other status
	OutcomeNonSuccessStatus
	// OutcomeTransportFailure means no usable response was received
	OutcomeTransportFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNonSuccessStatus:
		return "non-success-status"
	case OutcomeTransportFailure:
		return "transport-failure"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Sample is the result of one executed request. Phase timestamps are offsets
// from the start of the request. Samples are immutable once returned.
type Sample struct {
	// Index is the trial number within its batch
	Index int

	// Status is the HTTP status code, 0 when the transport failed
	Status int

	// URL is the requested URL
	URL string

	// EffectiveURL is the final URL after redirects
	EffectiveURL string

	// Protocol is the negotiated protocol label, e.g. "HTTP/2"
	Protocol string

	// BytesDownloaded is the size of the response body as received
	BytesDownloaded int64

	// Phase timestamps are offsets from the start of the trial. After a
	// redirect they describe the final hop only.
	DNSDone         time.Duration
	ConnectDone     time.Duration
	TLSDone         time.Duration
	PretransferDone time.Duration
	FirstByteDone   time.Duration
	TotalDone       time.Duration

	// RedirectTime is the offset at which the final hop started, zero
	// without redirects
	RedirectTime time.Duration

	// Headers holds the folded response headers
	Headers Headers

	// Err is the transport failure, nil when a response was fully read
	Err error
}

// Outcome classifies the sample
func (s Sample) Outcome() Outcome {
	switch {
	case s.Err != nil || s.Status == 0:
		return OutcomeTransportFailure
	case s.Status != 200:
		return OutcomeNonSuccessStatus
	default:
		return OutcomeSuccess
	}
}

// Succeeded reports whether the sample feeds timing statistics
func (s Sample) Succeeded() bool {
	return s.Outcome() == OutcomeSuccess
}

// Redirected reports whether the effective URL differs from the requested one
func (s Sample) Redirected() bool {
	return s.EffectiveURL != "" && s.EffectiveURL != s.URL
}

// Validate checks the phase ordering invariant
func (s Sample) Validate() error {
	ordered := []struct {
		name string
		at   time.Duration
	}{
		{"redirect", s.RedirectTime},
		{"dns", s.DNSDone},
		{"connect", s.ConnectDone},
		{"tls", s.TLSDone},
		{"pretransfer", s.PretransferDone},
		{"first byte", s.FirstByteDone},
		{"total", s.TotalDone},
	}

	if ordered[0].at < 0 {
		return fmt.Errorf("%w: redirect at %v", ErrPhaseOrder, s.RedirectTime)
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].at < ordered[i-1].at {
			return fmt.Errorf("%w: %s (%v) before %s (%v)",
				ErrPhaseOrder, ordered[i].name, ordered[i].at, ordered[i-1].name, ordered[i-1].at)
		}
	}
	return nil
}

// Phases holds the derived phase durations of a sample in milliseconds
type Phases struct {
	DNS          float64 `json:"dnsLookupMs" yaml:"dnsLookupMs"`
	TCP          float64 `json:"tcpHandshakeMs" yaml:"tcpHandshakeMs"`
	TLS          float64 `json:"sslHandshakeMs" yaml:"sslHandshakeMs"`
	TTFB         float64 `json:"ttfbMs" yaml:"ttfbMs"`
	DataTransfer float64 `json:"dataTransferMs" yaml:"dataTransferMs"`
	Total        float64 `json:"totalMs" yaml:"totalMs"`
	Redirect     float64 `json:"redirectMs,omitempty" yaml:"redirectMs,omitempty"`
}

// Phases derives the per-phase durations. TTFB is measured from pretransfer,
// so DNS+TCP+TLS+TTFB+DataTransfer equals Total minus the gap between the
// TLS handshake and pretransfer. After a redirect DNS spans every earlier hop.
func (s Sample) Phases() Phases {
	return Phases{
		DNS:          Millis(s.DNSDone),
		TCP:          Millis(s.ConnectDone - s.DNSDone),
		TLS:          Millis(s.TLSDone - s.ConnectDone),
		TTFB:         Millis(s.FirstByteDone - s.PretransferDone),
		DataTransfer: Millis(s.TotalDone - s.FirstByteDone),
		Total:        Millis(s.TotalDone),
		Redirect:     Millis(s.RedirectTime),
	}
}

// Millis converts a duration to milliseconds with microsecond resolution
func Millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
