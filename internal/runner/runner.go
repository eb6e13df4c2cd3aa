// Package runner executes batches of requests.
//
// Two strategies are provided. Sequential issues trials one after another and
// retains completion order. Concurrent issues every trial at once and waits
// until all of them are terminal; each trial writes exactly one pre-allocated
// slot of the result, so no sample is lost or duplicated.
package runner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wesleyorama2/perfo/internal/http"
)

// Strategy identifies how a batch was executed.
type Strategy string

const (
	// StrategySingle is one request
	StrategySingle Strategy = "single"

	// StrategySequential runs trials one by one
	StrategySequential Strategy = "sequential"

	// StrategyConcurrent runs all trials at once
	StrategyConcurrent Strategy = "concurrent"
)

// Executor performs exactly one request and reports it as a Sample. It must
// be safe for concurrent use.
type Executor interface {
	Do(ctx context.Context) http.Sample
}

// Batch is the result of a run.
type Batch struct {
	Strategy Strategy      `json:"strategy" yaml:"strategy"`
	Duration time.Duration `json:"-" yaml:"-"`
	Samples  []http.Sample `json:"-" yaml:"-"`
}

// Option configures a run.
type Option func(*options)

type options struct {
	observer func(http.Sample)
}

// WithObserver registers a callback invoked once per completed trial. For
// concurrent runs it is called from many goroutines at once.
func WithObserver(fn func(http.Sample)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) observe(s http.Sample) {
	if o.observer != nil {
		o.observer(s)
	}
}

func checkCount(n int) error {
	if n < 0 {
		return fmt.Errorf("request count must not be negative, got %d", n)
	}
	return nil
}

// RunOne executes a single request
func RunOne(ctx context.Context, exec Executor, opts ...Option) Batch {
	o := buildOptions(opts)

	start := time.Now()
	s := exec.Do(ctx)
	s.Index = 0
	o.observe(s)

	return Batch{
		Strategy: StrategySingle,
		Duration: time.Since(start),
		Samples:  []http.Sample{s},
	}
}

// RunSequential executes n requests one after another
func RunSequential(ctx context.Context, exec Executor, n int, opts ...Option) (Batch, error) {
	if err := checkCount(n); err != nil {
		return Batch{}, err
	}
	o := buildOptions(opts)

	start := time.Now()
	samples := make([]http.Sample, 0, n)
	for i := 0; i < n; i++ {
		s := exec.Do(ctx)
		s.Index = i
		o.observe(s)
		samples = append(samples, s)
	}

	return Batch{
		Strategy: StrategySequential,
		Duration: time.Since(start),
		Samples:  samples,
	}, nil
}

// RunConcurrent issues n requests at once and blocks until all have finished
func RunConcurrent(ctx context.Context, exec Executor, n int, opts ...Option) (Batch, error) {
	if err := checkCount(n); err != nil {
		return Batch{}, err
	}
	o := buildOptions(opts)

	start := time.Now()
	samples := make([]http.Sample, n)

	eg := new(errgroup.Group)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			s := exec.Do(ctx)
			s.Index = i
			o.observe(s)
			samples[i] = s
			return nil
		})
	}

	// Trials report failures inside their Sample, never through the group.
	if err := eg.Wait(); err != nil {
		return Batch{}, err
	}

	return Batch{
		Strategy: StrategyConcurrent,
		Duration: time.Since(start),
		Samples:  samples,
	}, nil
}
