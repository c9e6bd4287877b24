package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/objgraph/pkg/errors"
)

// Execute runs the objgraph CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level, plus collector and store events
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        fmt.Fprintln(os.Stderr, cli.FormatError(err))
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	return newRootCommand(os.Stderr).ExecuteContext(ctx)
}

// newRootCommand builds the root command with the --verbose flag, logging
// to logw.
func newRootCommand(logw io.Writer) *cobra.Command {
	var verbose bool

	c := New(logw, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Set the log level before the config is loaded so loading is logged too
	preRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)
		return preRun(cmd, args)
	}
	return root
}

// FormatError renders err for the terminal, appending its error code when
// the message does not already carry it.
func FormatError(err error) string {
	msg := err.Error()
	code := apperr.GetCode(err)
	if code == "" || strings.Contains(msg, string(code)) {
		return msg
	}
	return fmt.Sprintf("%s [%s]", msg, code)
}
