package pipeline

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/pickgo/internal/validate"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available on PATH")
	}
}

func requirePatch(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("patch"); err != nil {
		t.Skip("patch not available on PATH")
	}
}

func initRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=pickgo-test", "GIT_AUTHOR_EMAIL=pickgo@example.com",
			"GIT_COMMITTER_NAME=pickgo-test", "GIT_COMMITTER_EMAIL=pickgo@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	run("init", "-q")
	run("config", "user.name", "pickgo-test")
	run("config", "user.email", "pickgo@example.com")
	run("symbolic-ref", "HEAD", "refs/heads/main")

	for name, content := range files {
		full := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		run("add", name)
	}
	run("commit", "-q", "-m", "initial")

	return dir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=pickgo-test", "GIT_AUTHOR_EMAIL=pickgo@example.com",
		"GIT_COMMITTER_NAME=pickgo-test", "GIT_COMMITTER_EMAIL=pickgo@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

func TestPickNativeCleanCherryPick(t *testing.T) {
	requireGit(t)
	dir := initRepo(t, map[string]string{"foo.txt": "line1\nline2\nline3\n"})

	runGit(t, dir, "checkout", "-q", "-b", "feature")
	writeFile(t, dir, "foo.txt", "line1\nline2\nline3\nline4\n")
	runGit(t, dir, "commit", "-q", "-am", "add line4")

	out, err := exec.Command("git", "-C", dir, "rev-parse", "HEAD").Output()
	require.NoError(t, err)
	head := strings.TrimSpace(string(out))

	runGit(t, dir, "checkout", "-q", "main")

	p := New(dir, nil, nil, nil)
	outcome, err := p.Pick(context.Background(), head, Options{Signoff: true, RecordOrigin: true})
	require.NoError(t, err)
	require.Equal(t, KindSuccess, outcome.Kind, outcome.Reason)
	require.Equal(t, "native cherry-pick", outcome.SucceededVia)

	msg, err := p.VCS.CommitMessage(context.Background(), "HEAD")
	require.NoError(t, err)
	require.Contains(t, msg, "(cherry picked from commit "+head+")")
	require.Contains(t, msg, "Signed-off-by:")
}

func TestPickWorkingTreeDirtyRefusal(t *testing.T) {
	requireGit(t)
	dir := initRepo(t, map[string]string{"foo.txt": "line1\n"})
	writeFile(t, dir, "foo.txt", "line1\nuncommitted\n")

	p := New(dir, nil, nil, nil)
	outcome, err := p.Pick(context.Background(), "HEAD", Options{})
	require.NoError(t, err)
	require.Equal(t, KindWorkingTreeDirty, outcome.Kind)
}

// TestPickPatchFailedNoLLMOnRealConflict edits the same line to genuinely
// different content on both branches: a true content conflict that neither
// native cherry-pick nor the patch tool's fuzz ladder can resolve, and with
// LLM repair disabled the pick must fail with PATCH_FAILED_NO_LLM rather
// than silently applying a mangled merge.
func TestPickPatchFailedNoLLMOnRealConflict(t *testing.T) {
	requireGit(t)
	requirePatch(t)
	dir := initRepo(t, map[string]string{"foo.txt": "alpha\nbeta\ngamma\ndelta\nepsilon\n"})

	runGit(t, dir, "checkout", "-q", "-b", "feature")
	writeFile(t, dir, "foo.txt", "alpha\nBETA_FROM_FEATURE\ngamma\ndelta\nepsilon\n")
	runGit(t, dir, "commit", "-q", "-am", "feature changes beta")

	out, err := exec.Command("git", "-C", dir, "rev-parse", "HEAD").Output()
	require.NoError(t, err)
	head := strings.TrimSpace(string(out))

	runGit(t, dir, "checkout", "-q", "main")
	writeFile(t, dir, "foo.txt", "alpha\nBETA_FROM_MAIN\ngamma\ndelta\nepsilon\n")
	runGit(t, dir, "commit", "-q", "-am", "main changes beta differently")

	preHead, err := exec.Command("git", "-C", dir, "rev-parse", "HEAD").Output()
	require.NoError(t, err)

	p := New(dir, nil, nil, nil)
	outcome, err := p.Pick(context.Background(), head, Options{LLMEnabled: false})
	require.NoError(t, err)
	require.Contains(t, []Kind{KindPatchFailedNoLLM, KindPatchUnresolvable}, outcome.Kind, outcome.Reason)

	clean, err := p.VCS.IsClean(context.Background())
	require.NoError(t, err)
	require.True(t, clean, "expected the working tree to be rolled back to clean after a failed pick")

	afterHead, err := exec.Command("git", "-C", dir, "rev-parse", "HEAD").Output()
	require.NoError(t, err)
	require.Equal(t, strings.TrimSpace(string(preHead)), strings.TrimSpace(string(afterHead)),
		"expected HEAD to be restored to its pre-pick position after rollback")
}

// TestPickDependencyAssistDegradesGracefully exercises the same conflict as
// TestPickPatchFailedNoLLMOnRealConflict but with DependencyDepth > 0: since
// neither side's commit has any backport-context candidate recent enough to
// help, the dependency-assisted retry must find nothing and fall back to
// the original failure outcome rather than reporting KindDependencyLimit or
// some other outcome invented by the retry path.
func TestPickDependencyAssistDegradesGracefully(t *testing.T) {
	requireGit(t)
	requirePatch(t)
	dir := initRepo(t, map[string]string{"foo.txt": "alpha\nbeta\ngamma\ndelta\nepsilon\n"})

	runGit(t, dir, "checkout", "-q", "-b", "feature")
	writeFile(t, dir, "foo.txt", "alpha\nBETA_FROM_FEATURE\ngamma\ndelta\nepsilon\n")
	runGit(t, dir, "commit", "-q", "-am", "feature changes beta")

	out, err := exec.Command("git", "-C", dir, "rev-parse", "HEAD").Output()
	require.NoError(t, err)
	head := strings.TrimSpace(string(out))

	runGit(t, dir, "checkout", "-q", "main")
	writeFile(t, dir, "foo.txt", "alpha\nBETA_FROM_MAIN\ngamma\ndelta\nepsilon\n")
	runGit(t, dir, "commit", "-q", "-am", "main changes beta differently")

	p := New(dir, nil, nil, nil)
	outcome, err := p.Pick(context.Background(), head, Options{LLMEnabled: false, DependencyDepth: 3})
	require.NoError(t, err)
	require.Contains(t, []Kind{KindPatchFailedNoLLM, KindPatchUnresolvable}, outcome.Kind, outcome.Reason)
	require.NotEqual(t, KindDependencyLimit, outcome.Kind)

	clean, err := p.VCS.IsClean(context.Background())
	require.NoError(t, err)
	require.True(t, clean, "expected the working tree to be rolled back to clean after a failed pick")
}

func TestResolveDependenciesNoopWhenDepthZero(t *testing.T) {
	p := &Pipeline{}
	trailers, err := p.resolveDependencies(context.Background(), "deadbeef", Options{DependencyDepth: 0})
	require.NoError(t, err)
	require.Nil(t, trailers)
}

func TestMaybeValidateSkippedWhenScopeNone(t *testing.T) {
	p := &Pipeline{}
	summary, outcome := p.maybeValidate(context.Background(), "HEAD", Options{RunValidationAfter: validate.ScopeNone})
	require.Nil(t, summary)
	require.Nil(t, outcome)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
