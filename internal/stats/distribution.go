package stats

import (
	"fmt"
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// histogram range in microseconds: 1µs to 1 hour, 3 significant figures
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// Quantile is a value of a distribution at a given quantile (0-100).
type Quantile struct {
	Quantile float64 `json:"quantile" yaml:"quantile"`
	Value    float64 `json:"valueMs" yaml:"valueMs"`
}

// Bucket counts the values falling in (From, To] milliseconds.
type Bucket struct {
	From  float64 `json:"fromMs" yaml:"fromMs"`
	To    float64 `json:"toMs" yaml:"toMs"`
	Count int64   `json:"count" yaml:"count"`
}

// Distribution is an HDR histogram of millisecond values. Unlike Summary it
// trades exactness for a bounded footprint and finer quantiles.
type Distribution struct {
	hist *hdrhistogram.Histogram
}

// NewDistribution records values given in milliseconds
func NewDistribution(values []float64) (*Distribution, error) {
	if err := requireValues(values); err != nil {
		return nil, err
	}

	hist := hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)
	for _, v := range values {
		micros := int64(math.Round(v * 1000))

		// Clamp to valid range
		if micros < histogramMin {
			micros = histogramMin
		}
		if micros > histogramMax {
			micros = histogramMax
		}

		if err := hist.RecordValue(micros); err != nil {
			return nil, fmt.Errorf("recording %v ms: %w", v, err)
		}
	}

	return &Distribution{hist: hist}, nil
}

func toMillis(micros int64) float64 {
	return float64(micros) / 1000
}

// Count returns the number of recorded values
func (d *Distribution) Count() int64 {
	return d.hist.TotalCount()
}

// Mean returns the mean of the recorded values
func (d *Distribution) Mean() float64 {
	return d.hist.Mean() / 1000
}

// StdDev returns the standard deviation of the recorded values
func (d *Distribution) StdDev() float64 {
	return d.hist.StdDev() / 1000
}

// Quantiles returns the value at each requested quantile (0-100)
func (d *Distribution) Quantiles(quantiles ...float64) []Quantile {
	out := make([]Quantile, 0, len(quantiles))
	for _, q := range quantiles {
		out = append(out, Quantile{
			Quantile: q,
			Value:    toMillis(d.hist.ValueAtQuantile(q)),
		})
	}
	return out
}

// Buckets splits [min, max] into n equal-width buckets
func (d *Distribution) Buckets(n int) []Bucket {
	if n <= 0 || d.hist.TotalCount() == 0 {
		return nil
	}

	lo := toMillis(d.hist.Min())
	hi := toMillis(d.hist.Max())
	width := (hi - lo) / float64(n)

	buckets := make([]Bucket, n)
	for i := range buckets {
		buckets[i].From = lo + width*float64(i)
		buckets[i].To = lo + width*float64(i+1)
	}
	buckets[n-1].To = hi

	for _, bar := range d.hist.Distribution() {
		if bar.Count == 0 {
			continue
		}

		i := 0
		if width > 0 {
			i = int((toMillis(bar.To) - lo) / width)
		}
		if i >= n {
			i = n - 1
		}
		if i < 0 {
			i = 0
		}
		buckets[i].Count += bar.Count
	}

	return buckets
}
