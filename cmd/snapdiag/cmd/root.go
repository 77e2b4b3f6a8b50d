// Package cmd contains the CLI commands for snapdiag.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Used for flags
	verbose bool
	output  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "snapdiag",
	Short: "snapdiag - post-hoc node snapshot diagnostics",
	Long: `snapdiag inspects a previously collected snapshot of a node's state
(log files, command-output captures, config files) and reports:

  - tallies of recurring log events and exceptions grouped by
    originating component and time bucket
  - duration statistics for start/end event pairs
  - issue detections from declarative scenario rules evaluated
    against facts derived from the snapshot

It never scans live systems and never mutates collected data.

Examples:
  # Analyze an unpacked sosreport with the default definitions
  snapdiag analyze /var/tmp/sosreport-node1 --defs ./defs

  # Tally with per-minute granularity over all rotated logs
  snapdiag analyze ./snapshot --defs ./defs --granularity time --all-logs

  # List loaded check and scenario definitions
  snapdiag scenarios --defs ./defs`,
	// Run when no subcommand is specified
	Run: func(cmd *cobra.Command, args []string) {
		// Show help by default
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "yaml", "output format (yaml, json)")
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// GetOutput returns the output format.
func GetOutput() string {
	return output
}

// PrintError prints an error message and exits if fatal is true.
func PrintError(msg string, fatal bool) {
	fmt.Fprintln(os.Stderr, "Error:", msg)
	if fatal {
		os.Exit(1)
	}
}

// PrintVerbose prints a message only if verbose mode is enabled.
func PrintVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}
