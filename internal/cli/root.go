// Package cli provides the witsmlctl command-line interface. It runs the log index
// checks of the server against local YAML and CSV files.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ErrFindings is returned by commands that ran fine but found mismatches or overlaps.
var ErrFindings = errors.New("findings reported")

// Execute runs the root command and returns the exit code: 0 when clean, 1 when a
// check reported findings and 2 on errors.
func Execute() int {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrFindings) {
			return 1
		}
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "witsmlctl",
		Short: "Check WITSML log indexes from the command line",
		Long: `witsmlctl runs the log index checks of the WITSML Explorer backend on local files.

Logs are read from YAML files holding one log header and its curves, in the same
layout as the catalog seed file. Import data is read from CSV files whose header
row names the columns as Name[unit].`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text|json|yaml)")

	rootCmd.AddCommand(NewCompareCommand())
	rootCmd.AddCommand(NewDiffTimeCommand())
	rootCmd.AddCommand(NewValidateOffsetCommand())
	rootCmd.AddCommand(NewOverlapCommand())
	return rootCmd
}
