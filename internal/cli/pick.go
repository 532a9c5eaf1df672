package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sprite-ai/pickgo/internal/analysis"
	"github.com/sprite-ai/pickgo/internal/diffmodel"
	"github.com/sprite-ai/pickgo/internal/llm"
	"github.com/sprite-ai/pickgo/internal/pipeline"
	"github.com/sprite-ai/pickgo/internal/repair"
	"github.com/sprite-ai/pickgo/internal/tui"
	"github.com/sprite-ai/pickgo/internal/validate"
)

var pickFlags struct {
	llmEnabled       bool
	llmModel         string
	llmRegion        string
	llmProject       string
	llmCachePath     string
	pathRewrites     []string
	validateCmd      string
	validateAfter    string
	signoff          bool
	recordOrigin     bool
	dependencyDepth  int
	interactive      bool
	llmMaxCharDiff   int
	llmMaxDiffRatio  float64
	llmFilterPhrases []string
	llmMaxInputLines int
	skipAnalysis     bool
	verbose          bool
}

var pickCmd = &cobra.Command{
	Use:   "pick <commit>",
	Short: "Cherry-pick a commit, falling back to a fuzzy patch and LLM repair",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runPick(args[0]))
	},
}

func init() {
	f := pickCmd.Flags()
	f.BoolVar(&pickFlags.llmEnabled, "llm", false, "enable LLM repair when the patch stage leaves rejects")
	f.StringVar(&pickFlags.llmModel, "llm-model", "", "LLM model name (default: "+llm.DefaultModel+")")
	f.StringVar(&pickFlags.llmRegion, "llm-region", "", "Vertex AI region; selects Vertex auth when set")
	f.StringVar(&pickFlags.llmProject, "llm-project", "", "Vertex AI project ID")
	f.StringVar(&pickFlags.llmCachePath, "llm-cache", "", "path to the LLM response cache file (default: <repo>/.git/pickgo-llm-cache.json)")
	f.StringArrayVar(&pickFlags.pathRewrites, "path-rewrite", nil, "old:new path rewrite rule, first match wins, repeatable")
	f.StringVar(&pickFlags.validateCmd, "validate-cmd", "", "validation command run after a successful pick, changed paths appended")
	f.StringVar(&pickFlags.validateAfter, "validate-after", "none", "validation scope: none, each-file, patch, all")
	f.BoolVar(&pickFlags.signoff, "signoff", false, "append a Signed-off-by trailer")
	f.BoolVarP(&pickFlags.recordOrigin, "record-origin", "x", false, "append a \"(cherry picked from commit <id>)\" line")
	f.IntVar(&pickFlags.dependencyDepth, "dependency-depth", 0, "max depth of backport context commits to auto-resolve")
	f.BoolVar(&pickFlags.interactive, "interactive", false, "route every accepted LLM repair through the terminal approval gate")
	f.IntVar(&pickFlags.llmMaxCharDiff, "llm-max-char-diff", -1, "reject an LLM repair whose edit distance from the original hunk exceeds this many characters; negative disables")
	f.Float64Var(&pickFlags.llmMaxDiffRatio, "llm-max-diff-ratio", -1, "reject an LLM repair whose edit distance ratio exceeds this value; negative disables")
	f.StringArrayVar(&pickFlags.llmFilterPhrases, "llm-filter-phrase", repair.DefaultFilterPhrases, "abort a repair whose prompt contains this phrase (case-insensitive), repeatable")
	f.IntVar(&pickFlags.llmMaxInputLines, "llm-max-input-lines", 0, "reject a repair whose destination window exceeds this many lines; zero disables")
	f.BoolVar(&pickFlags.skipAnalysis, "skip-analysis", false, "skip the non-blocking static analysis passes over the commit's hunks")
	f.BoolVar(&pickFlags.verbose, "verbose", false, "enable debug logging")
}

func runPick(commitID string) int {
	logger := newLogger(pickFlags.verbose)
	defer logger.Sync()

	repoRoot, err := gitRepoRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pickgo:", err)
		return 1
	}

	ctx := context.Background()

	var llmClient *llm.Client
	var repairEngine *repair.Engine
	if pickFlags.llmEnabled {
		cachePath := pickFlags.llmCachePath
		if cachePath == "" {
			cachePath = repoRoot + "/.git/pickgo-llm-cache.json"
		}

		client, err := llm.NewClient(ctx, llm.Config{
			Model:     pickFlags.llmModel,
			APIKey:    os.Getenv("ANTHROPIC_API_KEY"),
			Region:    pickFlags.llmRegion,
			ProjectID: pickFlags.llmProject,
			Cache:     llm.NewCache(cachePath),
		}, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "pickgo: constructing LLM client:", err)
			return 1
		}
		llmClient = client

		var approval repair.ApprovalFunc
		if pickFlags.interactive {
			approval = tui.Approval
		}

		repairEngine = &repair.Engine{
			Querier: llmClient,
			Limits: repair.Limits{
				Interactive:   pickFlags.interactive,
				MaxCharDiff:   pickFlags.llmMaxCharDiff,
				MaxDiffRatio:  pickFlags.llmMaxDiffRatio,
				FilterPhrases: pickFlags.llmFilterPhrases,
				MaxInputLines: pickFlags.llmMaxInputLines,
			},
			Approval: approval,
		}
	}

	p := pipeline.New(repoRoot, repairEngine, llmClient, logger)

	if !pickFlags.skipAnalysis {
		runAnalysis(ctx, p, commitID)
	}

	scope, err := parseValidateScope(pickFlags.validateAfter)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pickgo:", err)
		return 1
	}

	var validateCommand []string
	if pickFlags.validateCmd != "" {
		validateCommand = strings.Fields(pickFlags.validateCmd)
	}

	opts := pipeline.Options{
		LLMEnabled:         pickFlags.llmEnabled,
		LLMModel:           pickFlags.llmModel,
		LLMRegion:          pickFlags.llmRegion,
		LLMProject:         pickFlags.llmProject,
		PathRewrites:       pickFlags.pathRewrites,
		ValidationCommand:  validateCommand,
		ValidationTimeout:  5 * time.Minute,
		RunValidationAfter: scope,
		Signoff:            pickFlags.signoff,
		RecordOrigin:       pickFlags.recordOrigin,
		DependencyDepth:    pickFlags.dependencyDepth,
	}

	outcome, err := p.Pick(ctx, commitID, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pickgo:", err)
		return 1
	}

	reportOutcome(outcome)
	return outcome.Kind.ExitCode()
}

// runAnalysis prints a non-blocking risk summary for commitID's diff. It
// never affects the pick's outcome; a failure to load or parse the diff is
// reported but otherwise swallowed, since --skip-analysis exists for
// callers who'd rather not pay for this at all.
func runAnalysis(ctx context.Context, p *pipeline.Pipeline, commitID string) {
	rawDiff, err := p.VCS.Show(ctx, commitID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pickgo: analysis: loading commit diff:", err)
		return
	}
	files, err := diffmodel.Parse(rawDiff)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pickgo: analysis: parsing commit diff:", err)
		return
	}

	results := analysis.Run(files, p.RepoRoot, nil)
	fmt.Fprintf(os.Stderr, "pickgo: analysis: %s\n", results.Summary())
	for _, f := range results.ByRisk(results.MaxRisk()) {
		fmt.Fprintln(os.Stderr, "  "+f.String())
	}
}

func reportOutcome(outcome pipeline.Outcome) {
	if outcome.Kind == pipeline.KindSuccess {
		fmt.Printf("pickgo: applied via %s (commit %s)\n", outcome.SucceededVia, outcome.CommitID)
		for _, a := range outcome.Annotations {
			fmt.Println("  " + a)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "pickgo: %s: %s\n", outcome.Kind, outcome.Reason)
}

func parseValidateScope(s string) (validate.Scope, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return validate.ScopeNone, nil
	case "each-file":
		return validate.ScopeEach, nil
	case "patch":
		return validate.ScopePatch, nil
	case "all":
		return validate.ScopeAll, nil
	default:
		return "", fmt.Errorf("invalid --validate-after value %q (want none, each-file, patch, all)", s)
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func gitRepoRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git rev-parse --show-toplevel: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
