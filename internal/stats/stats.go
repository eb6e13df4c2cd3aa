// Package stats reduces timing samples to summary metrics.
//
// Rules:
//
//   - Median averages the two central values for even counts.
//   - Percentile uses an index rule: index = p/100*count; an integral index
//     averages values[index-1] and values[index], any other index selects
//     values[floor(index)].
//   - Average sums the positive values and divides by one more than their
//     count. An all-zero phase averages to 0.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidInput is returned for empty inputs and out-of-range percentiles.
var ErrInvalidInput = errors.New("stats: invalid input")

// Summary is the reduction of one phase across a batch.
type Summary struct {
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Average float64 `json:"avg" yaml:"avg"`
	Median  float64 `json:"mdn" yaml:"mdn"`
	P75     float64 `json:"p75" yaml:"p75"`
	P95     float64 `json:"p95" yaml:"p95"`
}

func sorted(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

func requireValues(values []float64) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: no values", ErrInvalidInput)
	}
	return nil
}

// Min returns the smallest value
func Min(values []float64) (float64, error) {
	if err := requireValues(values); err != nil {
		return 0, err
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Min(m, v)
	}
	return m, nil
}

// Max returns the largest value
func Max(values []float64) (float64, error) {
	if err := requireValues(values); err != nil {
		return 0, err
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Max(m, v)
	}
	return m, nil
}

// Median returns the middle value, or the mean of the two middle values for
// an even count
func Median(values []float64) (float64, error) {
	if err := requireValues(values); err != nil {
		return 0, err
	}

	s := sorted(values)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid], nil
	}
	return (s[mid-1] + s[mid]) / 2, nil
}

// Percentile returns the p-th percentile, 0 < p <= 100
func Percentile(p float64, values []float64) (float64, error) {
	if err := requireValues(values); err != nil {
		return 0, err
	}
	if p <= 0 || p > 100 || math.IsNaN(p) {
		return 0, fmt.Errorf("%w: percentile %v out of range (0, 100]", ErrInvalidInput, p)
	}

	s := sorted(values)

	// p*count/100 keeps integral indexes such as 95*20/100 exact.
	index := p * float64(len(s)) / 100

	if index == math.Trunc(index) {
		i := int(index)
		if i >= len(s) {
			return s[len(s)-1], nil
		}
		return (s[i-1] + s[i]) / 2, nil
	}
	return s[int(math.Floor(index))], nil
}

// Average sums the positive values and divides by their count plus one.
// Non-positive values are left out of both sum and divisor.
func Average(values []float64) (float64, error) {
	if err := requireValues(values); err != nil {
		return 0, err
	}

	sum := 0.0
	count := 1
	for _, v := range values {
		if v <= 0 {
			continue
		}
		sum += v
		count++
	}
	return sum / float64(count), nil
}

// Summarize computes every statistic of a Summary
func Summarize(values []float64) (Summary, error) {
	if err := requireValues(values); err != nil {
		return Summary{}, err
	}

	// Errors are impossible past the emptiness check.
	var s Summary
	s.Min, _ = Min(values)
	s.Max, _ = Max(values)
	s.Average, _ = Average(values)
	s.Median, _ = Median(values)
	s.P75, _ = Percentile(75, values)
	s.P95, _ = Percentile(95, values)
	return s, nil
}
