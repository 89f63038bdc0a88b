// Package cli implements the casemk command-line interface.
//
// # Commands
//
//   - generate: lay out items, assemble the case and write CAD and document outputs
//   - layout: print the computed slot layout as JSON
//   - compare: compare the layout under what-if configuration variants
//   - batch: run a file of independent jobs in parallel
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// writes to stderr; results and status lines go to stdout.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/casemk/internal/buildinfo"
	"github.com/piwi3910/casemk/internal/errors"
)

const appName = "casemk"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           appName,
		Short:         "casemk generates parametric storage cases",
		Long:          `casemk turns item dimensions and footprint constraints into a fully dimensioned storage case with dividers, optional rounded corners and a stacking lip, written as OpenSCAD, STL, DXF and PDF.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.batchCommand())

	return root
}

// FormatError renders err for the terminal: the code-free message, and the
// violated constraint when there is one.
func FormatError(err error) string {
	msg := errors.UserMessage(err)
	if code := errors.GetCode(err); code != "" {
		return styleIconError.Render(iconError) + " " + StyleDim.Render(string(code)) + " " + msg
	}
	return styleIconError.Render(iconError) + " " + msg
}
