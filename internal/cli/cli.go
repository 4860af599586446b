// Package cli implements the qrstyle command-line interface.
//
// The main commands are:
//   - render: render one styled QR code to a PNG, JPEG or SVG file
//   - serve: run the HTTP API
//
// All commands accept --verbose (-v) for debug-level logging. The logger is
// carried on the command context.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the values printed by --version. main injects them via
// ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute builds the command tree and runs it with ctx.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "qrstyle",
		Short:        "Render styled QR codes for URLs",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("qrstyle %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newServeCmd())
	return root
}
