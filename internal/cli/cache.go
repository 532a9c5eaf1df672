package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/pickgo/internal/llm"
)

var cacheFlags struct {
	path string
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the LLM response cache",
}

var cacheInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List cached LLM responses",
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runCacheInspect())
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached LLM responses",
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runCacheClear())
	},
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheFlags.path, "path", "", "path to the LLM cache file (default: <repo>/.git/pickgo-llm-cache.json)")
	cacheCmd.AddCommand(cacheInspectCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func resolveCachePath() (string, error) {
	if cacheFlags.path != "" {
		return cacheFlags.path, nil
	}
	repoRoot, err := gitRepoRoot()
	if err != nil {
		return "", err
	}
	return repoRoot + "/.git/pickgo-llm-cache.json", nil
}

func runCacheInspect() int {
	path, err := resolveCachePath()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pickgo:", err)
		return 1
	}

	cache := llm.NewCache(path)
	entries, err := cache.Entries()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pickgo:", err)
		return 1
	}

	if len(entries) == 0 {
		fmt.Println("cache is empty")
		return 0
	}

	fingerprints := make([]string, 0, len(entries))
	for fp := range entries {
		fingerprints = append(fingerprints, fp)
	}
	sort.Strings(fingerprints)

	for _, fp := range fingerprints {
		entry := entries[fp]
		fmt.Printf("%s  model=%s  prompt_len=%d  response_len=%d\n", fp, entry.Model, len(entry.Prompt), len(entry.Response))
	}
	fmt.Printf("%d entries\n", len(entries))
	return 0
}

func runCacheClear() int {
	path, err := resolveCachePath()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pickgo:", err)
		return 1
	}

	if err := llm.NewCache(path).Clear(); err != nil {
		fmt.Fprintln(os.Stderr, "pickgo:", err)
		return 1
	}
	fmt.Println("cache cleared")
	return 0
}
