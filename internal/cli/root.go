// Package cli provides the command-line interface for Log Detective.
package cli

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var debug bool

// ExitCode is set by commands to indicate the run result: 0 clean,
// 1 alerts detected, 2 configuration or runtime error.
var ExitCode = 0

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "logdetective",
		Short: "Parse Linux auth logs and flag suspicious authentication activity",
		Long: `Log Detective ingests auth.log-style authentication logs, classifies
each line into a structured security event, and runs two temporal
correlation rules over the event stream:

  - brute-force bursts: repeated failed logins from one IP inside a window
  - success-after-failures: a login that succeeds right after such a burst

Results export as CSV or JSON tables plus two PNG charts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Increase logging verbosity")
	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(NewAnalyzeCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

func initLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
