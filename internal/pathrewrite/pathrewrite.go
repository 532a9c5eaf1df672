// Package pathrewrite applies ordered old-prefix -> new-prefix mappings to
// the paths inside a diff, letting a pick carry a commit across codebases
// that have renamed directories.
package pathrewrite

import (
	"regexp"
	"strings"

	"github.com/sprite-ai/pickgo/internal/diffmodel"
)

// Rule is one old_prefix -> new_prefix mapping.
type Rule struct {
	OldPrefix string
	NewPrefix string
}

// Rewriter holds an ordered set of Rules. Rules compose left-to-right: for
// a given path, the first Rule whose OldPrefix matches wins.
type Rewriter struct {
	Rules []Rule
}

// New builds a Rewriter from "old:new" strings, the --path-rewrite flag
// format.
func New(specs []string) (*Rewriter, error) {
	rw := &Rewriter{}
	for _, s := range specs {
		parts := strings.SplitN(s, ":", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, &MalformedRuleError{Spec: s}
		}
		rw.Rules = append(rw.Rules, Rule{OldPrefix: parts[0], NewPrefix: parts[1]})
	}
	return rw, nil
}

// MalformedRuleError reports a --path-rewrite flag that isn't "old:new".
type MalformedRuleError struct{ Spec string }

func (e *MalformedRuleError) Error() string {
	return "malformed path rewrite rule (want old:new): " + e.Spec
}

// RewritePath applies the first matching rule to path, or returns path
// unchanged if no rule matches. An empty Rewriter is the identity.
func (rw *Rewriter) RewritePath(path string) string {
	if rw == nil || path == "" {
		return path
	}
	for _, r := range rw.Rules {
		if strings.HasPrefix(path, r.OldPrefix) {
			return r.NewPrefix + strings.TrimPrefix(path, r.OldPrefix)
		}
	}
	return path
}

// Apply rewrites OldPath/NewPath on every FileChange, returning a new slice
// (the input is left untouched, consistent with Commit's immutability).
func (rw *Rewriter) Apply(files []diffmodel.FileChange) []diffmodel.FileChange {
	out := make([]diffmodel.FileChange, len(files))
	for i, fc := range files {
		fc.OldPath = rw.RewritePath(fc.OldPath)
		fc.NewPath = rw.RewritePath(fc.NewPath)
		out[i] = fc
	}
	return out
}

var (
	diffGitLine = regexp.MustCompile(`^diff --git a/(\S+) b/(\S+)`)
	minusLine   = regexp.MustCompile(`^--- (a/(\S+)|/dev/null)`)
	plusLine    = regexp.MustCompile(`^\+\+\+ (b/(\S+)|/dev/null)`)
)

// RewriteDiffText rewrites the "diff --git", "---", and "+++" header lines
// of raw unified diff text in place, without touching hunk bodies or file
// contents.
func (rw *Rewriter) RewriteDiffText(raw string) string {
	if rw == nil || len(rw.Rules) == 0 {
		return raw
	}

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		switch {
		case diffGitLine.MatchString(line):
			m := diffGitLine.FindStringSubmatch(line)
			lines[i] = "diff --git a/" + rw.RewritePath(m[1]) + " b/" + rw.RewritePath(m[2])
		case minusLine.MatchString(line):
			m := minusLine.FindStringSubmatch(line)
			if m[2] != "" {
				lines[i] = "--- a/" + rw.RewritePath(m[2])
			}
		case plusLine.MatchString(line):
			m := plusLine.FindStringSubmatch(line)
			if m[2] != "" {
				lines[i] = "+++ b/" + rw.RewritePath(m[2])
			}
		}
	}
	return strings.Join(lines, "\n")
}
