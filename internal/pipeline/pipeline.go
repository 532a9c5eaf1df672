// Package pipeline implements the pick state machine: the sequence
// START -> NATIVE_TRY -> PATCH_TRY -> LLM_TRY -> COMMIT -> VALIDATE -> DONE,
// with ROLLBACK on any terminal failure, generalized from
// original_source/git_llm_pick.py:pick_git_commit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sprite-ai/pickgo/internal/diffmodel"
	"github.com/sprite-ai/pickgo/internal/llm"
	"github.com/sprite-ai/pickgo/internal/pathrewrite"
	"github.com/sprite-ai/pickgo/internal/patchtool"
	"github.com/sprite-ai/pickgo/internal/repair"
	"github.com/sprite-ai/pickgo/internal/section"
	"github.com/sprite-ai/pickgo/internal/validate"
	"github.com/sprite-ai/pickgo/internal/vcs"
)

// Pipeline owns a working tree exclusively for the duration of one Pick
// call. It is single-threaded and sequential, per spec.md §5: every stage
// mutates the same working tree, so there is no internal parallelism.
type Pipeline struct {
	VCS       *vcs.Adapter
	Patch     *patchtool.Adapter
	Repair    *repair.Engine
	Extractor *section.Extractor
	LLMClient *llm.Client // optional, used only for AuditNote stats

	Logger   *zap.Logger
	RepoRoot string
}

// New constructs a Pipeline rooted at repoRoot, wiring the VCS Adapter,
// Patch Tool Adapter, and Context Extractor with their defaults. The
// Repair Engine and LLM Client are supplied separately since their
// construction depends on network credentials the CLI resolves.
func New(repoRoot string, repairEngine *repair.Engine, llmClient *llm.Client, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		VCS:       vcs.New(repoRoot),
		Patch:     patchtool.New(repoRoot),
		Repair:    repairEngine,
		Extractor: section.New(),
		LLMClient: llmClient,
		Logger:    logger,
		RepoRoot:  repoRoot,
	}
}

// Pick runs the full fallback pipeline for commitID and returns the
// terminal Outcome. It never returns a Go error for a failure that the
// state machine itself handles; a non-nil error means something outside
// the modeled failure kinds went wrong (e.g. a git subprocess failing for
// reasons unrelated to the pick itself).
func (p *Pipeline) Pick(ctx context.Context, commitID string, opts Options) (Outcome, error) {
	lock, err := vcs.AcquireWorkingTreeLock(p.RepoRoot)
	if err != nil {
		if errors.Is(err, vcs.ErrWorkingTreeLocked) {
			return Outcome{Kind: KindWorkingTreeDirty, Reason: "another pick already owns this working tree"}, nil
		}
		return Outcome{}, fmt.Errorf("acquiring working tree lock: %w", err)
	}
	defer lock.Release()

	return p.pickLocked(ctx, commitID, opts)
}

// pickLocked is Pick's body, factored out so that resolveDependencies can
// recurse into it directly: the outer Pick call already holds the working
// tree lock for the whole dependency-plus-main-commit transaction, and
// WorkingTreeLock isn't reentrant.
func (p *Pipeline) pickLocked(ctx context.Context, commitID string, opts Options) (Outcome, error) {
	clean, err := p.VCS.IsClean(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("checking working tree state: %w", err)
	}
	if !clean {
		return Outcome{Kind: KindWorkingTreeDirty, Reason: "working tree has uncommitted changes"}, nil
	}

	preHead, err := p.VCS.CurrentHead(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("snapshotting HEAD: %w", err)
	}

	outcome, stageErr := p.runStages(ctx, commitID, opts, nil)
	if stageErr != nil {
		return Outcome{}, stageErr
	}

	if outcome.Kind != KindSuccess && opts.DependencyDepth > 0 && needsDependencyAssist(outcome.Kind) {
		outcome = p.retryWithDependencies(ctx, commitID, opts, preHead, outcome)
	}

	if outcome.Kind != KindSuccess && outcome.Kind != KindRollbackError {
		if rbErr := p.rollback(ctx, preHead); rbErr != nil {
			p.Logger.Error("rollback failed", zap.Error(rbErr), zap.String("pre_head", preHead))
			outcome.Kind = KindRollbackError
			outcome.Reason = fmt.Sprintf("%s (rollback also failed: %v)", outcome.Reason, rbErr)
		}
	}

	return outcome, nil
}

// needsDependencyAssist reports whether a failed outcome is the kind that
// backporting context commits could plausibly fix: the patch/LLM stages
// ran out of ways to place hunks against the current tree. A conflict kind
// that has nothing to do with missing context (dirty tree, binary
// conflict, validation failure) is never retried with dependency
// assistance.
func needsDependencyAssist(k Kind) bool {
	switch k {
	case KindPatchFailedNoLLM, KindPatchUnresolvable, KindLLMRefused, KindLLMParseFailed, KindLLMUnavailable:
		return true
	default:
		return false
	}
}

// retryWithDependencies is reached only once PATCH_TRY/LLM_TRY have already
// failed to resolve commitID on their own, per spec.md §4.1 transition 4.
// It backports commits that touched nearby code, then retries the whole
// pick with those as prerequisites. Generalized from
// original_source/git_llm_pick.py's pick_git_commit, which calls
// backport_with_context only after every native cherry-pick strategy has
// failed, and from backport_with_context itself, which no-ops rather than
// failing the pick outright when it can't find anything to backport or
// nothing new, keeping whatever outcome the unaided attempt produced.
func (p *Pipeline) retryWithDependencies(ctx context.Context, commitID string, opts Options, preHead string, original Outcome) Outcome {
	if rbErr := p.rollback(ctx, preHead); rbErr != nil {
		p.Logger.Error("rollback before dependency-assisted retry failed", zap.Error(rbErr))
		return Outcome{Kind: KindRollbackError, Reason: original.Reason}
	}

	depTrailers, depErr := p.resolveDependencies(ctx, commitID, opts)
	if depErr != nil {
		if errors.Is(depErr, ErrDependencyDepthExceeded) {
			return Outcome{Kind: KindDependencyLimit, Reason: depErr.Error()}
		}
		p.Logger.Debug("dependency-assisted retry unavailable, keeping original failure",
			zap.Error(depErr), zap.String("commit", commitID))
		return original
	}
	if len(depTrailers) == 0 {
		return original
	}

	retryOutcome, retryErr := p.runStages(ctx, commitID, opts, depTrailers)
	if retryErr != nil {
		p.Logger.Error("dependency-assisted retry errored, keeping original failure", zap.Error(retryErr))
		return original
	}
	return retryOutcome
}

// resolveDependencies finds commits that touched the code around commitID's
// hunks (via backportContextCommits, bounded to opts.DependencyDepth
// candidates already), picks any that aren't already reachable from HEAD,
// and returns a "Depends-on" trailer for each one it picked. A candidate
// that itself needs dependency assistance beyond the remaining depth
// reports ErrDependencyDepthExceeded, which retryWithDependencies turns
// into KindDependencyLimit; any other candidate failure is reported as a
// plain error, which retryWithDependencies treats as "couldn't help",
// keeping the outer pick's original outcome.
func (p *Pipeline) resolveDependencies(ctx context.Context, commitID string, opts Options) ([]string, error) {
	if opts.DependencyDepth <= 0 {
		return nil, nil
	}

	rawDiff, err := p.VCS.Show(ctx, commitID)
	if err != nil {
		return nil, fmt.Errorf("loading commit diff for dependency scan: %w", err)
	}
	files, err := diffmodel.Parse(rawDiff)
	if err != nil {
		return nil, fmt.Errorf("parsing commit diff for dependency scan: %w", err)
	}

	var filePaths []string
	hunkRanges := make(map[string][][2]int)
	for _, fc := range files {
		if fc.IsBinary || len(fc.Hunks) == 0 {
			continue
		}
		path := fc.Path()
		filePaths = append(filePaths, path)
		for _, h := range fc.Hunks {
			hunkRanges[path] = append(hunkRanges[path], [2]int{h.OldStart, h.OldStart + h.OldCount})
		}
	}

	candidates, err := backportContextCommits(ctx, p.VCS, commitID, filePaths, hunkRanges, opts.DependencyDepth)
	if err != nil {
		return nil, fmt.Errorf("finding backport context commits: %w", err)
	}

	queue := newDependencyQueue()
	var trailers []string
	for _, candidate := range candidates {
		if queue.visit(candidate) {
			continue
		}

		present, err := p.VCS.CommitIsPresent(ctx, candidate, "HEAD")
		if err != nil {
			return nil, fmt.Errorf("checking whether %s is already picked: %w", candidate, err)
		}
		if present {
			continue
		}

		depOpts := opts
		depOpts.DependencyDepth = opts.DependencyDepth - 1
		outcome, err := p.pickLocked(ctx, candidate, depOpts)
		if err != nil {
			return nil, fmt.Errorf("picking dependency %s: %w", candidate, err)
		}
		if outcome.Kind != KindSuccess {
			if depOpts.DependencyDepth <= 0 {
				return nil, fmt.Errorf("%w: %s needs further context beyond the configured depth", ErrDependencyDepthExceeded, candidate)
			}
			return nil, fmt.Errorf("dependency %s failed: %s", candidate, outcome.Reason)
		}
		trailers = append(trailers, fmt.Sprintf("Depends-on: %s", candidate))
	}

	return trailers, nil
}

func (p *Pipeline) rollback(ctx context.Context, preHead string) error {
	_ = p.VCS.AbortCherryPick(ctx)
	if err := p.VCS.ResetHard(ctx, preHead); err != nil {
		return err
	}
	return p.VCS.CleanUntracked(ctx)
}

// runStages implements the state machine body; pickLocked wraps it with the
// dirty-tree check, dependency-assisted retry, and rollback-on-failure. The
// working tree is already clean and free of any in-progress cherry-pick by
// the time runStages is called, whether that's because nothing has run yet
// or because retryWithDependencies reset it before committing dependency
// picks of its own.
func (p *Pipeline) runStages(ctx context.Context, commitID string, opts Options, depTrailers []string) (Outcome, error) {
	rewriter, err := pathrewrite.New(opts.PathRewrites)
	if err != nil {
		return Outcome{Kind: KindPatchUnresolvable, Reason: err.Error()}, nil
	}

	// --- NATIVE_TRY ---
	nativeResult, err := p.VCS.CherryPick(ctx, commitID, opts.ExtraCherryPickArgs)
	if err != nil {
		return Outcome{}, fmt.Errorf("native cherry-pick: %w", err)
	}

	if !nativeResult.Conflicted && len(opts.PathRewrites) == 0 {
		return p.finishNative(ctx, commitID, opts, depTrailers)
	}

	if nativeResult.Conflicted && nativeResult.BinaryConflict {
		return Outcome{Kind: KindBinaryConflict, Reason: "native cherry-pick conflicted on a binary file"}, nil
	}

	if err := p.VCS.AbortCherryPick(ctx); err != nil {
		return Outcome{}, fmt.Errorf("aborting native cherry-pick: %w", err)
	}

	// --- PATCH_TRY ---
	return p.patchTry(ctx, commitID, opts, rewriter, depTrailers)
}

func (p *Pipeline) finishNative(ctx context.Context, commitID string, opts Options, depTrailers []string) (Outcome, error) {
	annotations := []string{"Applied with: native cherry-pick"}
	return p.finishCommit(ctx, commitID, opts, "native cherry-pick", annotations, depTrailers, 0, true)
}

func (p *Pipeline) patchTry(ctx context.Context, commitID string, opts Options, rewriter *pathrewrite.Rewriter, depTrailers []string) (Outcome, error) {
	rawDiff, err := p.VCS.Show(ctx, commitID)
	if err != nil {
		return Outcome{}, fmt.Errorf("loading commit diff: %w", err)
	}

	files, err := diffmodel.Parse(rawDiff)
	if err != nil {
		return Outcome{Kind: KindPatchUnresolvable, Reason: fmt.Sprintf("malformed diff: %v", err)}, nil
	}

	files = rewriter.Apply(files)

	if err := diffmodel.ValidateWithinRepo(p.RepoRoot, files); err != nil {
		return Outcome{Kind: KindPatchUnresolvable, Reason: err.Error()}, nil
	}

	rewrittenDiff := diffmodel.Emit(files)

	if strings.TrimSpace(rewrittenDiff) == "" {
		return Outcome{Kind: KindPatchUnresolvable, Reason: "commit diff is empty after path rewriting"}, nil
	}

	for _, fc := range files {
		if fc.IsBinary {
			return Outcome{Kind: KindBinaryConflict, Reason: fmt.Sprintf("commit touches binary file %s", fc.Path())}, nil
		}
	}

	totalHunks := 0
	for _, fc := range files {
		totalHunks += len(fc.Hunks)
	}
	if totalHunks == 0 {
		// Pure rename / mode change: bypass the patch and LLM stages.
		if err := p.VCS.ApplyDiff(ctx, rewrittenDiff); err != nil {
			return Outcome{Kind: KindPatchUnresolvable, Reason: fmt.Sprintf("applying rename/mode-change diff: %v", err)}, nil
		}
		annotations := []string{"Applied with: patch tool (rename/mode change)"}
		return p.finishCommit(ctx, commitID, opts, "patch tool (rename/mode change)", annotations, depTrailers, 0, false)
	}

	result, err := p.Patch.TryLadder(ctx, rewrittenDiff, opts.fuzzLadder(), p.VCS, "HEAD")
	if err != nil {
		return Outcome{Kind: KindPatchUnresolvable, Reason: err.Error()}, nil
	}

	if result.Applied {
		if err := p.VCS.StageAll(ctx); err != nil {
			return Outcome{}, fmt.Errorf("staging patch-tool changes: %w", err)
		}
		annotations := []string{fmt.Sprintf("Applied with: patch tool (fuzz=%d)", result.FuzzLevel)}
		return p.finishCommit(ctx, commitID, opts, fmt.Sprintf("patch tool (fuzz=%d)", result.FuzzLevel), annotations, depTrailers, 0, false)
	}

	if len(result.Rejects) == 0 {
		return Outcome{Kind: KindPatchUnresolvable, Reason: "patch stage failed without producing any reject for repair"}, nil
	}

	if !opts.LLMEnabled {
		return Outcome{Kind: KindPatchFailedNoLLM, Reason: fmt.Sprintf("%d hunk(s) rejected and LLM repair is disabled", len(result.Rejects))}, nil
	}

	// --- LLM_TRY ---
	return p.llmTry(ctx, commitID, opts, result.Rejects, depTrailers)
}

func (p *Pipeline) llmTry(ctx context.Context, commitID string, opts Options, rejects []diffmodel.Reject, depTrailers []string) (Outcome, error) {
	if p.Repair == nil {
		return Outcome{Kind: KindLLMUnavailable, Reason: "no repair engine configured"}, nil
	}

	// Within a file, hunks are processed by ascending old_start.
	sort.SliceStable(rejects, func(i, j int) bool {
		if rejects[i].TargetFile != rejects[j].TargetFile {
			return rejects[i].TargetFile < rejects[j].TargetFile
		}
		return rejects[i].Hunk.OldStart < rejects[j].Hunk.OldStart
	})

	commitMessage, err := p.VCS.CommitMessage(ctx, commitID)
	if err != nil {
		return Outcome{}, fmt.Errorf("reading commit message for repair prompt: %w", err)
	}

	resolved := 0
	for _, reject := range rejects {
		input, err := p.buildRepairInput(ctx, commitID, reject, commitMessage)
		if err != nil {
			return Outcome{Kind: KindLLMParseFailed, Reason: err.Error()}, nil
		}

		result, err := p.Repair.Repair(ctx, input)
		if err != nil {
			return Outcome{Kind: repairErrorKind(err), Reason: err.Error()}, nil
		}

		if err := p.applyRepair(reject, input, result); err != nil {
			return Outcome{Kind: KindLLMParseFailed, Reason: fmt.Sprintf("applying repaired section: %v", err)}, nil
		}
		resolved++
	}

	if err := p.VCS.StageAll(ctx); err != nil {
		return Outcome{}, fmt.Errorf("staging llm-repaired changes: %w", err)
	}

	annotations := []string{fmt.Sprintf("Applied with: LLM repair (%d hunks)", resolved)}
	return p.finishCommit(ctx, commitID, opts, fmt.Sprintf("LLM repair (%d hunks)", resolved), annotations, depTrailers, resolved, false)
}

func repairErrorKind(err error) Kind {
	switch {
	case errorIs(err, repair.ErrRefused):
		return KindLLMRefused
	case errorIs(err, repair.ErrTransport):
		return KindLLMUnavailable
	default:
		return KindLLMParseFailed
	}
}

func errorIs(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// buildRepairInput gathers the Repair Engine's five prompt slots for one
// Reject: the destination section in the working tree, and the same-named
// source sections from the commit's parent and from the commit itself.
func (p *Pipeline) buildRepairInput(ctx context.Context, commitID string, reject diffmodel.Reject, commitMessage string) (repair.Input, error) {
	destPath, err := diffmodel.SafeJoin(p.RepoRoot, reject.TargetFile)
	if err != nil {
		return repair.Input{}, err
	}
	destBytes, err := os.ReadFile(destPath)
	if err != nil {
		return repair.Input{}, fmt.Errorf("reading destination file %s: %w", reject.TargetFile, err)
	}
	destLines := strings.Split(string(destBytes), "\n")
	destSection := p.Extractor.Extract(reject.TargetFile, "working-tree", destLines, reject.Hunk.NewStart, reject.Hunk.NewStart+reject.Hunk.NewCount)

	beforeBlob, err := p.VCS.BlobAt(ctx, commitID+"^", reject.TargetFile)
	if err != nil {
		return repair.Input{}, fmt.Errorf("reading parent blob for %s: %w", reject.TargetFile, err)
	}
	beforeLines := strings.Split(beforeBlob, "\n")
	sourceBefore := p.Extractor.Extract(reject.TargetFile, commitID+"^", beforeLines, reject.Hunk.OldStart, reject.Hunk.OldStart+reject.Hunk.OldCount)

	afterBlob, err := p.VCS.BlobAt(ctx, commitID, reject.TargetFile)
	if err != nil {
		return repair.Input{}, fmt.Errorf("reading commit blob for %s: %w", reject.TargetFile, err)
	}
	afterLines := strings.Split(afterBlob, "\n")
	sourceAfter := p.Extractor.Extract(reject.TargetFile, commitID, afterLines, reject.Hunk.NewStart, reject.Hunk.NewStart+reject.Hunk.NewCount)

	return repair.Input{
		CommitMessage: commitMessage,
		SourceBefore:  sourceBefore.Text,
		SourceAfter:   sourceAfter.Text,
		DestBefore:    destSection.Text,
		RejectHunk:    reject.Hunk.Body(),
	}, nil
}

// applyRepair replaces the destination section's line range with the
// repaired text and re-reads the written file. The section it re-extracts
// from that file is not checked against anything, so the only failure
// after the write is a file that cannot be re-read.
func (p *Pipeline) applyRepair(reject diffmodel.Reject, input repair.Input, result repair.Result) error {
	destPath, err := diffmodel.SafeJoin(p.RepoRoot, reject.TargetFile)
	if err != nil {
		return err
	}
	destBytes, err := os.ReadFile(destPath)
	if err != nil {
		return err
	}
	lines := strings.Split(string(destBytes), "\n")

	sec := p.Extractor.Extract(reject.TargetFile, "working-tree", lines, reject.Hunk.NewStart, reject.Hunk.NewStart+reject.Hunk.NewCount)

	var out []string
	out = append(out, lines[:sec.StartLine-1]...)
	out = append(out, strings.Split(result.PatchedText, "\n")...)
	if sec.EndLine < len(lines) {
		out = append(out, lines[sec.EndLine:]...)
	}

	if err := os.WriteFile(destPath, []byte(strings.Join(out, "\n")), 0o644); err != nil {
		return err
	}

	// Re-read the patched file; the re-extracted section is discarded.
	verifyBytes, err := os.ReadFile(destPath)
	if err != nil {
		return fmt.Errorf("re-reading patched file for verification: %w", err)
	}
	verifyLines := strings.Split(string(verifyBytes), "\n")
	if len(verifyLines) == 0 {
		return fmt.Errorf("patched file %s is empty after repair", reject.TargetFile)
	}
	_ = p.Extractor.Extract(reject.TargetFile, "working-tree", verifyLines, sec.StartLine, sec.StartLine)
	return nil
}

func (p *Pipeline) finishCommit(ctx context.Context, commitID string, opts Options, via string, annotations, depTrailers []string, rejectsResolved int, alreadyCommitted bool) (Outcome, error) {
	originalMessage, err := p.VCS.CommitMessage(ctx, commitID)
	if err != nil {
		return Outcome{}, fmt.Errorf("reading original commit message: %w", err)
	}

	finalAnnotations := append([]string{}, annotations...)
	finalAnnotations = append(finalAnnotations, depTrailers...)
	if opts.RecordOrigin {
		finalAnnotations = append(finalAnnotations, originLine(commitID))
	}
	if opts.Signoff {
		author, err := p.VCS.CommitAuthor(ctx, commitID)
		if err != nil {
			return Outcome{}, fmt.Errorf("reading commit author for sign-off: %w", err)
		}
		finalAnnotations = append(finalAnnotations, signoffLine(author))
	}

	message := composeMessage(strings.TrimRight(originalMessage, "\n"), finalAnnotations)

	// The native path already has a commit (HEAD is the cherry-picked
	// commit); amend its message in place rather than creating a new one.
	if alreadyCommitted {
		if err := p.VCS.AmendMessage(ctx, message); err != nil {
			return Outcome{}, fmt.Errorf("amending native cherry-pick message: %w", err)
		}
	} else {
		author, err := p.VCS.CommitAuthor(ctx, commitID)
		if err != nil {
			return Outcome{}, fmt.Errorf("reading commit author: %w", err)
		}
		if err := p.VCS.Commit(ctx, message, "--author="+author); err != nil {
			return Outcome{}, fmt.Errorf("creating commit for %s path: %w", via, err)
		}
	}

	newHead, err := p.VCS.CurrentHead(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("reading new HEAD: %w", err)
	}

	if err := p.writeAuditNote(ctx, newHead, via, rejectsResolved); err != nil {
		p.Logger.Warn("failed to write audit note", zap.Error(err))
	}

	validationResult, outcome := p.maybeValidate(ctx, commitID, opts)
	if outcome != nil {
		return *outcome, nil
	}

	return Outcome{
		Kind:             KindSuccess,
		SucceededVia:     via,
		Annotations:      finalAnnotations,
		RejectsResolved:  rejectsResolved,
		ValidationResult: validationResult,
		CommitID:         newHead,
	}, nil
}

func (p *Pipeline) maybeValidate(ctx context.Context, commitID string, opts Options) (*validationSummary, *Outcome) {
	if opts.RunValidationAfter == "" || opts.RunValidationAfter == validate.ScopeNone || len(opts.ValidationCommand) == 0 {
		return nil, nil
	}

	changed, err := p.VCS.ChangedFiles(ctx, "HEAD")
	if err != nil {
		o := Outcome{Kind: KindValidationFailed, Reason: fmt.Sprintf("collecting changed files for validation: %v", err)}
		return nil, &o
	}

	cmd := validate.Command{
		Path:    opts.ValidationCommand[0],
		Args:    opts.ValidationCommand[1:],
		Dir:     p.RepoRoot,
		Timeout: opts.ValidationTimeout,
	}

	result, err := validate.Run(ctx, cmd, changed)
	if err != nil {
		o := Outcome{Kind: KindValidationFailed, Reason: err.Error()}
		return nil, &o
	}
	if !result.Passed {
		o := Outcome{Kind: KindValidationFailed, Reason: fmt.Sprintf("validation command exited %d", result.ExitCode)}
		return nil, &o
	}

	return &validationSummary{Passed: result.Passed, ExitCode: result.ExitCode, Stdout: result.Stdout, Stderr: result.Stderr}, nil
}

func (p *Pipeline) writeAuditNote(ctx context.Context, commitID, via string, rejectsResolved int) error {
	var stats string
	if p.LLMClient != nil {
		queries, hits, misses := p.LLMClient.Stats()
		stats = fmt.Sprintf("llm_queries=%d llm_cache_hits=%d llm_cache_misses=%d ", queries, hits, misses)
	}
	note := fmt.Sprintf("pickgo: applied_via=%q rejects_resolved=%d %s", via, rejectsResolved, stats)
	return p.VCS.AddNote(ctx, commitID, strings.TrimSpace(note))
}
