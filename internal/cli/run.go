package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/perfo/internal/http"
	"github.com/wesleyorama2/perfo/internal/output"
	"github.com/wesleyorama2/perfo/internal/report"
	"github.com/wesleyorama2/perfo/internal/runner"
	"github.com/wesleyorama2/perfo/internal/stats"
)

// runProbe executes one batch against rawURL and prints the result. Failed
// requests are part of the result, so only setup and output errors are
// returned.
func runProbe(cmd *cobra.Command, strategy runner.Strategy, rawURL string) error {
	s, err := loadSettings(cmd, rawURL)
	if err != nil {
		return err
	}

	log := newLogger(cmd.ErrOrStderr(), s.verbose)
	if s.profilePath != "" {
		log.Printf("using profile %s", s.profilePath)
	}
	log.Printf("target %s (http %s, reuse %t, timeout %s)",
		s.opts.URL, s.opts.HTTPVersion, s.opts.Reuse, s.opts.Timeout)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client := http.NewClient(s.opts)
	defer client.Close()

	out := cmd.OutOrStdout()
	printer := output.NewPrinter(out, !output.UseColor(out, s.noColor))

	if !s.structured() {
		printer.Welcome(version)
		printer.Progress(strategy, s.requests)
	}

	batch, err := execute(ctx, strategy, client, s.requests, runner.WithObserver(log.Sample))
	if err != nil {
		return err
	}

	if s.structured() {
		doc := output.NewDocument(s.opts, batch, output.DocumentOptions{
			Samples:      s.detail,
			Headers:      s.outputHeaders,
			ServerTiming: s.serverTiming,
			Histogram:    s.histogram,
		})
		return doc.Write(out, s.format, s.selects)
	}

	if strategy == runner.StrategySingle {
		printOne(printer, s, batch)
		return nil
	}
	return printMany(printer, s, batch)
}

func execute(ctx context.Context, strategy runner.Strategy, exec runner.Executor, n int, opts ...runner.Option) (runner.Batch, error) {
	switch strategy {
	case runner.StrategySequential:
		return runner.RunSequential(ctx, exec, n, opts...)
	case runner.StrategyConcurrent:
		return runner.RunConcurrent(ctx, exec, n, opts...)
	default:
		return runner.RunOne(ctx, exec, opts...), nil
	}
}

func printOne(printer *output.Printer, s *settings, batch runner.Batch) {
	sample := batch.Samples[0]

	printer.GeneralInfo(sample)
	printer.ExecutionTime(batch.Duration)
	printer.Break()

	if sample.Outcome() == http.OutcomeTransportFailure {
		return
	}

	if s.outputHeaders {
		printer.Headers(sample.Headers)
		printer.Break()
	}
	if s.serverTiming {
		printer.ServerTiming(report.ServerTimingEntries(sample))
		printer.Break()
	}
	printer.Timing(sample)
}

func printMany(printer *output.Printer, s *settings, batch runner.Batch) error {
	if len(batch.Samples) > 0 {
		printer.GeneralInfo(batch.Samples[0])
	}
	printer.ExecutionTime(batch.Duration)
	printer.Break()

	if s.serverTiming {
		if err := printer.ServerTimingTable(report.BuildServerTimingTable(batch.Samples)); err != nil {
			return err
		}
		printer.Break()
	}

	timing := report.BuildTimingTable(batch.Samples)
	if err := printer.TimingTable(timing); err != nil {
		return err
	}

	if s.detail {
		printer.Break()
		printer.Detail(batch.Samples)
	}

	if s.histogram {
		row, ok := timing.Row(report.PhaseTotal)
		if !ok {
			return nil
		}
		dist, err := stats.NewDistribution(row.Values)
		if err != nil {
			return err
		}
		printer.Break()
		printer.Histogram(report.PhaseTotal, dist)
	}
	return nil
}
