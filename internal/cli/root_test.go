package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, want := range []string{"pick", "cache", "version"} {
		require.True(t, names[want], "root command missing subcommand %q", want)
	}
}

func TestCacheHasInspectAndClear(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range cacheCmd.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["inspect"])
	require.True(t, names["clear"])
}

func TestVersionOutput(t *testing.T) {
	// version vars are set via ldflags; in tests they have their defaults
	require.Equal(t, "dev", version)
}
