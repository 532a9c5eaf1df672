package pipeline

import (
	"context"
	"errors"

	"github.com/sprite-ai/pickgo/internal/vcs"
)

// vcsContextSource is the subset of *vcs.Adapter the dependency-discovery
// helper needs, narrowed for testability.
type vcsContextSource interface {
	Blame(ctx context.Context, rev, path string, startLine, endLine int) ([]vcs.BlameLine, error)
	RecentFileHistory(ctx context.Context, rev string, paths []string, limit int) ([]string, error)
}

// defaultHistoryWindow is how many of a commit's own recent ancestors (over
// the files it touches) backportContextCommits will consider, matching
// original_source/git_commands.py's nr_history_commits default.
const defaultHistoryWindow = 5

// ErrDependencyDepthExceeded reports that a backported context commit
// itself needed further dependency assistance beyond opts.DependencyDepth.
// It is the only source of KindDependencyLimit: a context commit merely
// being available, even in large numbers, never fails a pick on its own
// now that backportContextCommits bounds the candidate set by truncation
// instead of by erroring.
var ErrDependencyDepthExceeded = errors.New("dependency depth exceeded")

// dependencyQueue is the explicit, cycle-checked visited set spec.md §9
// calls for in place of open recursion: a commit ID is picked at most once
// per resolveDependencies call.
type dependencyQueue struct {
	visited map[string]bool
}

func newDependencyQueue() *dependencyQueue {
	return &dependencyQueue{visited: make(map[string]bool)}
}

// visit reports whether commitID has already been queued, marking it
// visited as a side effect.
func (q *dependencyQueue) visit(commitID string) bool {
	if q.visited[commitID] {
		return true
	}
	q.visited[commitID] = true
	return false
}

// backportContextCommits finds commits that touched the code near
// commitID's hunks, via git blame over each hunk's target range in the
// parent revision, then restricts that candidate set to commits that also
// appear in commitID's own recent history on the same files, truncated to
// maxBackports. Generalized from
// original_source/git_commands.py:find_context_commits and
// backport_commit_context: the blame pass alone is the original's
// find_context_commits, which by itself is noisy (any author who ever
// touched a nearby line becomes a candidate); backport_commit_context's
// intersection with recent `git log` history is what keeps that noise from
// growing unbounded with file age.
func backportContextCommits(ctx context.Context, v vcsContextSource, commitID string, files []string, hunkRanges map[string][][2]int, maxBackports int) ([]string, error) {
	seen := make(map[string]bool)
	var blameCandidates []string

	for _, file := range files {
		for _, r := range hunkRanges[file] {
			start, end := r[0], r[1]
			if start < 1 {
				start = 1
			}
			lines, err := v.Blame(ctx, commitID+"^", file, start, end)
			if err != nil {
				continue
			}
			for _, bl := range lines {
				if bl.CommitID == commitID || seen[bl.CommitID] {
					continue
				}
				seen[bl.CommitID] = true
				blameCandidates = append(blameCandidates, bl.CommitID)
			}
		}
	}
	if len(blameCandidates) == 0 {
		return nil, nil
	}

	history, err := v.RecentFileHistory(ctx, commitID, files, defaultHistoryWindow)
	if err != nil {
		return nil, err
	}
	recent := make(map[string]bool, len(history))
	for _, h := range history {
		recent[h] = true
	}

	var out []string
	for _, c := range blameCandidates {
		if recent[c] {
			out = append(out, c)
		}
	}

	if maxBackports > 0 && len(out) > maxBackports {
		out = out[:maxBackports]
	}
	return out, nil
}
