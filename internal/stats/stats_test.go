package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverage(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"single value", []float64{5}, 2.5},
		{"all zero", []float64{0, 0, 0}, 0},
		{"zeros are skipped", []float64{0, 4, 8}, 4},
		{"negatives are skipped", []float64{-3, 6}, 3},
		{"several values", []float64{1, 2, 3}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Average(tt.values)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestMinMax(t *testing.T) {
	values := []float64{7, 3, 9, 1, 5}

	lo, err := Min(values)
	require.NoError(t, err)
	assert.Equal(t, 1.0, lo)

	hi, err := Max(values)
	require.NoError(t, err)
	assert.Equal(t, 9.0, hi)
}

func TestMedian(t *testing.T) {
	odd, err := Median([]float64{9, 1, 5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, odd)

	even, err := Median([]float64{4, 1, 3, 2})
	require.NoError(t, err)
	assert.Equal(t, 2.5, even)

	p50, err := Percentile(50, []float64{4, 1, 3, 2})
	require.NoError(t, err)
	assert.Equal(t, even, p50, "p50 of an even count matches the median")
}

func TestPercentile(t *testing.T) {
	five := []float64{10, 20, 30, 40, 50}
	twenty := make([]float64, 20)
	for i := range twenty {
		twenty[i] = float64(i + 1)
	}

	tests := []struct {
		name   string
		p      float64
		values []float64
		want   float64
	}{
		{"fractional index uses floor", 75, five, 40},
		{"p95 of five", 95, five, 50},
		{"p100 is the max", 100, five, 50},
		{"integral index averages neighbours", 95, twenty, 19.5},
		{"p50 of twenty", 50, twenty, 10.5},
		{"small p selects first value", 1, five, 10},
		{"single value", 95, []float64{42}, 42},
		{"input order does not matter", 75, []float64{50, 10, 40, 20, 30}, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Percentile(tt.p, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPercentile_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_, err := Percentile(50, values)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestInvalidInput(t *testing.T) {
	_, err := Min(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Max([]float64{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Median(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Average(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Summarize(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	for _, p := range []float64{0, -5, 100.1} {
		_, err = Percentile(p, []float64{1, 2, 3})
		assert.ErrorIs(t, err, ErrInvalidInput, "p=%v", p)
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{10, 20, 30, 40, 50})
	require.NoError(t, err)

	assert.Equal(t, Summary{
		Min:     10,
		Max:     50,
		Average: 25,
		Median:  30,
		P75:     40,
		P95:     50,
	}, s)
}
