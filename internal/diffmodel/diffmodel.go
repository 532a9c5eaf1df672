// Package diffmodel parses and re-serializes unified diffs into the types
// the rest of pickgo operates on: FileChange, Hunk, and Reject.
package diffmodel

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// LineOp tags a line within a Hunk.
type LineOp int

const (
	LineContext LineOp = iota
	LineAdded
	LineRemoved
)

func (op LineOp) String() string {
	switch op {
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	default:
		return "context"
	}
}

func (op LineOp) prefix() byte {
	switch op {
	case LineAdded:
		return '+'
	case LineRemoved:
		return '-'
	default:
		return ' '
	}
}

// Line is one line of a Hunk, tagged with its operation.
type Line struct {
	Op   LineOp
	Text string // without the trailing newline
}

// Hunk is a contiguous block of changes within one file, carrying the
// explicit context/removed/added line tags spec.md §3 requires rather than
// raw text re-parsed at each pipeline stage.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	// SectionHeader is the text that follows "@@ ... @@" on the hunk header
	// line, usually the nearest enclosing function or class signature as
	// guessed by the diff generator.
	SectionHeader string
	Lines         []Line
}

// Validate checks that the line tags agree with OldCount/NewCount.
func (h Hunk) Validate() error {
	var oldN, newN int
	for _, l := range h.Lines {
		switch l.Op {
		case LineContext:
			oldN++
			newN++
		case LineRemoved:
			oldN++
		case LineAdded:
			newN++
		}
	}
	if oldN != h.OldCount {
		return fmt.Errorf("hunk @@ -%d,%d +%d,%d @@: old line count mismatch: counted %d, header says %d", h.OldStart, h.OldCount, h.NewStart, h.NewCount, oldN, h.OldCount)
	}
	if newN != h.NewCount {
		return fmt.Errorf("hunk @@ -%d,%d +%d,%d @@: new line count mismatch: counted %d, header says %d", h.OldStart, h.OldCount, h.NewStart, h.NewCount, newN, h.NewCount)
	}
	return nil
}

// Body renders the hunk header followed by every line, prefixed with its
// operation marker, exactly as it would appear in a unified diff. Used by
// the Repair Engine to show the LLM the reject hunk in isolation.
func (h Hunk) Body() string {
	var b strings.Builder
	b.WriteString(h.Header())
	for _, l := range h.Lines {
		b.WriteByte('\n')
		b.WriteByte(l.Op.prefix())
		b.WriteString(l.Text)
	}
	return b.String()
}

// Header renders the "@@ -old,+new @@ section" line, without a trailing
// newline.
func (h Hunk) Header() string {
	head := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
	if h.SectionHeader != "" {
		head += " " + h.SectionHeader
	}
	return head
}

// FileChange is one file's worth of change within a Commit.
type FileChange struct {
	OldPath, NewPath string
	IsNew            bool
	IsDeleted        bool
	IsRename         bool
	IsBinary         bool
	ModeChange       string // e.g. "100644 => 100755", empty if unchanged
	Hunks            []Hunk
}

// Path returns the path this FileChange should be addressed by once it has
// settled: the new path for adds/renames/modifies, the old path for pure
// deletes.
func (fc FileChange) Path() string {
	if fc.IsDeleted {
		return fc.OldPath
	}
	if fc.NewPath != "" {
		return fc.NewPath
	}
	return fc.OldPath
}

// DisplayName renders a human-readable "old -> new" form for renames.
func (fc FileChange) DisplayName() string {
	if fc.IsRename && fc.OldPath != fc.NewPath {
		return fmt.Sprintf("%s -> %s", fc.OldPath, fc.NewPath)
	}
	return fc.Path()
}

// ErrPathEscapesRepo reports a path that would resolve outside the
// repository root it was about to be joined with.
var ErrPathEscapesRepo = errors.New("path escapes repository root")

// SafeJoin joins root with relPath and rejects any relPath that would
// resolve outside root, such as an absolute path or a "../" escape.
// relPath comes from parsed diff/reject text, which a malformed or
// adversarial commit can shape freely, so every read or write keyed off a
// FileChange or Reject path goes through this instead of a bare
// filepath.Join. Generalized from original_source/utils.py's
// validate_path_within_repository.
func SafeJoin(root, relPath string) (string, error) {
	if relPath == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathEscapesRepo)
	}
	if filepath.IsAbs(relPath) {
		return "", fmt.Errorf("%w: %q is an absolute path", ErrPathEscapesRepo, relPath)
	}

	rootClean := filepath.Clean(root)
	joined := filepath.Join(rootClean, relPath)
	if joined != rootClean && !strings.HasPrefix(joined, rootClean+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathEscapesRepo, relPath)
	}
	return joined, nil
}

// ValidateWithinRepo checks every path a FileChange could be addressed by
// (its settled Path, plus OldPath for a rename) against SafeJoin, failing
// closed on the first escape it finds. Grounded in
// original_source/utils.py's get_invalid_repository_paths/
// get_invalid_patch_paths, called from pick_git_commit at the same point
// in the pipeline as patchTry.
func ValidateWithinRepo(root string, files []FileChange) error {
	for _, fc := range files {
		if _, err := SafeJoin(root, fc.Path()); err != nil {
			return err
		}
		if fc.IsRename {
			if _, err := SafeJoin(root, fc.OldPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// Commit is an immutable, loaded-once view of a VCS commit: its metadata
// plus the ordered FileChanges it touches. Per spec.md §3, file_changes is
// stable and deterministic for a given id, and message is never mutated in
// place — the Pipeline appends annotations to a copy.
type Commit struct {
	ID      string
	Message string
	Author  string
	Parents []string
	Files   []FileChange
}

// Reject is a FileChange/Hunk pair the Patch Tool Adapter could not place,
// plus a best-guess target region in the destination file. A Reject is
// consumed at most once by the Repair Engine.
type Reject struct {
	File       FileChange
	Hunk       Hunk
	TargetFile string
	GuessLine  int
}

// Parse reads unified diff text and returns the FileChanges it describes.
// Parse-then-Emit is a fixed point: re-parsing Emit's output reproduces an
// equivalent slice of FileChanges.
func Parse(raw string) ([]FileChange, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	files := make([]FileChange, 0, len(parsed))
	for _, f := range parsed {
		fc := FileChange{
			OldPath:   f.OldName,
			NewPath:   f.NewName,
			IsNew:     f.IsNew,
			IsDeleted: f.IsDelete,
			IsRename:  f.IsRename,
			IsBinary:  f.IsBinary,
		}
		if f.OldMode != 0 && f.NewMode != 0 && f.OldMode != f.NewMode {
			fc.ModeChange = fmt.Sprintf("%o => %o", f.OldMode, f.NewMode)
		}

		for _, frag := range f.TextFragments {
			h := Hunk{
				OldStart:      int(frag.OldPosition),
				OldCount:      int(frag.OldLines),
				NewStart:      int(frag.NewPosition),
				NewCount:      int(frag.NewLines),
				SectionHeader: strings.TrimSpace(frag.Comment),
			}
			for _, line := range frag.Lines {
				op := LineContext
				switch line.Op {
				case gitdiff.OpAdd:
					op = LineAdded
				case gitdiff.OpDelete:
					op = LineRemoved
				}
				h.Lines = append(h.Lines, Line{Op: op, Text: strings.TrimSuffix(line.Line, "\n")})
			}
			fc.Hunks = append(fc.Hunks, h)
		}

		files = append(files, fc)
	}

	return files, nil
}

// Emit serializes FileChanges back into unified diff text in the
// "diff --git" format the Patch Tool Adapter and VCS Adapter both accept.
func Emit(files []FileChange) string {
	var b strings.Builder
	for _, fc := range files {
		writeFileHeader(&b, fc)
		for _, h := range fc.Hunks {
			b.WriteString(h.Header())
			b.WriteByte('\n')
			for _, l := range h.Lines {
				b.WriteByte(l.Op.prefix())
				b.WriteString(l.Text)
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

func writeFileHeader(b *strings.Builder, fc FileChange) {
	oldPath, newPath := fc.OldPath, fc.NewPath
	if oldPath == "" {
		oldPath = newPath
	}
	if newPath == "" {
		newPath = oldPath
	}

	fmt.Fprintf(b, "diff --git a/%s b/%s\n", oldPath, newPath)

	if fc.IsRename {
		fmt.Fprintf(b, "rename from %s\n", fc.OldPath)
		fmt.Fprintf(b, "rename to %s\n", fc.NewPath)
	}
	if oldMode, newMode, ok := strings.Cut(fc.ModeChange, " => "); ok {
		fmt.Fprintf(b, "old mode %s\nnew mode %s\n", oldMode, newMode)
	}

	if fc.IsBinary {
		fmt.Fprintf(b, "Binary files a/%s and b/%s differ\n", oldPath, newPath)
		return
	}

	if len(fc.Hunks) == 0 {
		return
	}

	if fc.IsNew {
		fmt.Fprintf(b, "--- /dev/null\n+++ b/%s\n", newPath)
		return
	}
	if fc.IsDeleted {
		fmt.Fprintf(b, "--- a/%s\n+++ /dev/null\n", oldPath)
		return
	}
	fmt.Fprintf(b, "--- a/%s\n+++ b/%s\n", oldPath, newPath)
}
