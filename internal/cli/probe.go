package cli

import (
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/perfo/internal/runner"
)

func newOneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "one URL",
		Short: "Send a single request and show its timing",
		Example: `  perfo one example.com
  perfo one https://example.com -t -z`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, runner.StrategySingle, args[0])
		},
	}
	addRequestFlags(cmd, false)
	return cmd
}

func newOneByOneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oo URL",
		Short: "Send requests one by one and summarize their timing",
		Example: `  perfo oo example.com -r 20
  perfo oo https://example.com -t --histogram`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, runner.StrategySequential, args[0])
		},
	}
	addRequestFlags(cmd, true)
	return cmd
}

func newConcurrentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cc URL",
		Short: "Send requests concurrently and summarize their timing",
		Example: `  perfo cc example.com -r 50
  perfo cc https://example.com --reuse --http2 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, runner.StrategyConcurrent, args[0])
		},
	}
	addRequestFlags(cmd, true)
	return cmd
}
