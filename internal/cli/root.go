// Package cli wires the pickgo command surface: a root command with pick,
// cache, and version subcommands, one file per command.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "pickgo",
	Short:         "Cherry-pick with a fuzzy-patch and LLM-repair fallback",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command against os.Args.
func Execute() error {
	return rootCmd.Execute()
}

// Run executes the root command and returns a process exit code. The pick
// subcommand calls os.Exit directly with a pipeline.Kind-derived code on a
// non-success Outcome; Run's return value only covers flag/usage errors and
// anything that bubbles up as a plain Go error.
func Run() int {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pickgo:", err)
		return 1
	}
	return 0
}
