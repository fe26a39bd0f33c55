// Package cli provides the command-line interface for ToyoAgent.
package cli

import (
	"os"
)

// Run starts the CLI application. Errors are silenced on the command tree,
// so they are surfaced here before exiting.
func Run() {
	rootCmd := NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}
