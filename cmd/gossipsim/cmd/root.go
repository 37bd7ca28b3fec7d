// Package cmd implements the gossipsim command line, wiring
// internal/config, internal/telemetry, internal/runid and internal/simrun
// behind its flags.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gossipsim",
	Short: "Discrete-event simulator of gossip-based binary consensus",
	Long: `gossipsim simulates a population of nodes gossiping a binary position
across a randomly generated peer overlay until a supermajority agrees or the
event queue empties (radio silence).

Running with no flags reproduces the built-in reference constants exactly.`,
	RunE: runSimulate,
}

// Execute runs the root command and maps errors to exit codes: 0 on
// consensus or radio silence, 1 on an invariant violation or config
// validation failure, 2 on a flag-parsing error (Cobra's SilenceUsage
// default).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if ce, ok := err.(*cliError); ok {
		return ce.code
	}
	fmt.Fprintln(os.Stderr, err)
	return 2
}

// cliError tags an error with the exit code it must produce, so Execute
// does not need to pattern-match on error types from across packages.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func fatal(code int, err error) error {
	return &cliError{code: code, err: err}
}
