// Package patchtool wraps the external fuzzy patch applicator (GNU patch)
// that the Pipeline falls back to when the native cherry-pick cannot apply
// a commit directly.
package patchtool

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/sprite-ai/pickgo/internal/diffmodel"
)

// DefaultLadder is the fuzz levels tried from strictest to loosest when no
// ladder is configured. Matches original_source's empirically observed
// default of trying fuzz 0 then 1, extended with one looser rung.
var DefaultLadder = []int{0, 1, 2}

// MaxFuzz bounds any configured ladder, per spec.md §4.2's "must be
// bounded" requirement.
const MaxFuzz = 5

// Adapter wraps the `patch` binary against a single working directory.
type Adapter struct {
	WorkDir string
}

// New returns an Adapter rooted at workDir.
func New(workDir string) *Adapter {
	return &Adapter{WorkDir: workDir}
}

// Result is the outcome of one fuzz-level attempt.
type Result struct {
	FuzzLevel int
	Applied   bool
	Rejects   []diffmodel.Reject
}

// ApplyAtFuzz runs `patch -p1 --fuzz=N` against diffText. If every hunk
// applies, Applied is true and Rejects is empty. Otherwise the patch tool
// still applies every hunk it could (spec.md §4.2's guarantee) and Rejects
// carries the hunks it couldn't place.
func (a *Adapter) ApplyAtFuzz(ctx context.Context, diffText string, fuzz int) (Result, error) {
	if fuzz < 0 || fuzz > MaxFuzz {
		return Result{}, fmt.Errorf("fuzz level %d out of bounds [0,%d]", fuzz, MaxFuzz)
	}

	rejFile, err := os.CreateTemp("", "pickgo-rejects-*.rej")
	if err != nil {
		return Result{}, fmt.Errorf("creating reject file: %w", err)
	}
	rejPath := rejFile.Name()
	rejFile.Close()
	defer os.Remove(rejPath)

	args := []string{"-p1", "--no-backup-if-mismatch", fmt.Sprintf("--fuzz=%d", fuzz), "--reject-file=" + rejPath, "--quiet"}
	cmd := exec.CommandContext(ctx, "patch", args...)
	cmd.Dir = a.WorkDir
	cmd.Stdin = strings.NewReader(diffText)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr == nil {
		return Result{FuzzLevel: fuzz, Applied: true}, nil
	}

	var exitErr *exec.ExitError
	if !isExitError(runErr, &exitErr) {
		return Result{}, fmt.Errorf("running patch: %w: %s", runErr, stderr.String())
	}

	rawRejects, err := os.ReadFile(rejPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading reject file: %w", err)
	}
	rejects, err := parseRejectText(string(rawRejects))
	if err != nil {
		return Result{}, fmt.Errorf("parsing reject output: %w", err)
	}
	return Result{FuzzLevel: fuzz, Applied: false, Rejects: rejects}, nil
}

// Resetter restores a clean working tree between fuzz-ladder rungs. A
// rejected attempt at one fuzz level can still apply some of its hunks,
// and original_source/git_llm_pick.py's try_fuzzy_patch calls
// git_reset_files before every rung but the last for exactly this reason:
// without it, the next rung sees an already-mutated tree instead of the
// commit's actual parent state.
type Resetter interface {
	ResetHard(ctx context.Context, ref string) error
	CleanUntracked(ctx context.Context) error
}

// TryLadder attempts ApplyAtFuzz at each level of ladder, strictest first,
// returning on the first level that fully applies. If none fully apply, it
// returns the Rejects from the loosest (final) level tried, which is the
// set the Repair Engine should work from. Before every rung but the first,
// reset restores cleanRef so each attempt starts from the same tree.
func (a *Adapter) TryLadder(ctx context.Context, diffText string, ladder []int, reset Resetter, cleanRef string) (Result, error) {
	if len(ladder) == 0 {
		ladder = DefaultLadder
	}

	var last Result
	for i, fuzz := range ladder {
		if i > 0 && reset != nil {
			if err := reset.ResetHard(ctx, cleanRef); err != nil {
				return Result{}, fmt.Errorf("resetting working tree before fuzz=%d: %w", fuzz, err)
			}
			if err := reset.CleanUntracked(ctx); err != nil {
				return Result{}, fmt.Errorf("cleaning working tree before fuzz=%d: %w", fuzz, err)
			}
		}

		res, err := a.ApplyAtFuzz(ctx, diffText, fuzz)
		if err != nil {
			return Result{}, err
		}
		if res.Applied {
			return res, nil
		}
		last = res
	}
	return last, nil
}

func isExitError(err error, target **exec.ExitError) bool {
	e, ok := err.(*exec.ExitError)
	if ok {
		*target = e
	}
	return ok
}

var rejFileHeader = regexp.MustCompile(`^--- (\S+)`)

// parseRejectText turns the concatenated reject output of one or more
// files into Reject values. GNU patch's combined reject file repeats a
// "--- path"/"+++ path" header per source file but omits the
// extended "diff --git" preamble diffmodel.Parse expects, so this inserts
// a synthetic one ahead of every new file section.
func parseRejectText(raw string) ([]diffmodel.Reject, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var withHeaders strings.Builder
	lines := strings.Split(raw, "\n")
	for i := 0; i < len(lines); i++ {
		if m := rejFileHeader.FindStringSubmatch(lines[i]); m != nil && i+1 < len(lines) {
			oldPath := strings.TrimPrefix(m[1], "a/")
			newPath := oldPath
			if pm := regexp.MustCompile(`^\+\+\+ (\S+)`).FindStringSubmatch(lines[i+1]); pm != nil {
				newPath = strings.TrimPrefix(pm[1], "b/")
			}
			fmt.Fprintf(&withHeaders, "diff --git a/%s b/%s\n", oldPath, newPath)
		}
		withHeaders.WriteString(lines[i])
		withHeaders.WriteByte('\n')
	}

	files, err := diffmodel.Parse(withHeaders.String())
	if err != nil {
		return nil, err
	}

	var rejects []diffmodel.Reject
	for _, fc := range files {
		for _, h := range fc.Hunks {
			rejects = append(rejects, diffmodel.Reject{
				File:       fc,
				Hunk:       h,
				TargetFile: fc.Path(),
				GuessLine:  h.NewStart,
			})
		}
	}
	return rejects, nil
}
