package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/perfo/internal/config"
)

var version = "0.1.0"

// newRootCmd builds the command tree. Tests build a fresh tree per case so
// flag values never leak between runs.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "perfo",
		Short:   "Measure HTTP response times phase by phase",
		Version: version,
		Long: `perfo sends HTTP requests to a URL and reports how long every phase took:
DNS lookup, TCP handshake, TLS handshake, time to first byte and data transfer.

Run a single request, a series one by one, or a burst of concurrent requests,
and read min, max, average, median, p75 and p95 per phase and per
Server-Timing metric.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Profile file (default $HOME/"+config.DefaultFileName+" when present)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.BoolP("verbose", "v", false, "Log every completed request to stderr")
	flags.StringP("format", "f", "text", "Output format: text, json or yaml")
	flags.StringArray("select", nil, "Print only the value at this path of the JSON result (repeatable)")

	root.AddCommand(newOneCmd())
	root.AddCommand(newOneByOneCmd())
	root.AddCommand(newConcurrentCmd())

	return root
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = newRootCmd()

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx as the parent of every
// request. Errors are printed to stderr.
func ExecuteContext(ctx context.Context) error {
	if err := RootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
