package diffmodel

import (
	"testing"
)

const sampleDiff = `diff --git a/foo.c b/foo.c
--- a/foo.c
+++ b/foo.c
@@ -1,4 +1,5 @@
 int main(void) {
-    return 0;
+    int rc = 0;
+    return rc;
 }

`

func TestParseBasic(t *testing.T) {
	files, err := Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	fc := files[0]
	if fc.Path() != "foo.c" {
		t.Fatalf("expected path foo.c, got %q", fc.Path())
	}
	if len(fc.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(fc.Hunks))
	}
	if err := fc.Hunks[0].Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestParseEmitRoundTrip(t *testing.T) {
	files, err := Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	emitted := Emit(files)

	reparsed, err := Parse(emitted)
	if err != nil {
		t.Fatalf("Parse(Emit(...)): %v", err)
	}

	if len(reparsed) != len(files) {
		t.Fatalf("round trip changed file count: %d != %d", len(reparsed), len(files))
	}
	for i := range files {
		if reparsed[i].Path() != files[i].Path() {
			t.Errorf("round trip changed path: %q != %q", reparsed[i].Path(), files[i].Path())
		}
		if len(reparsed[i].Hunks) != len(files[i].Hunks) {
			t.Fatalf("round trip changed hunk count for %s", files[i].Path())
		}
		for j := range files[i].Hunks {
			want, got := files[i].Hunks[j], reparsed[i].Hunks[j]
			if want.OldStart != got.OldStart || want.NewStart != got.NewStart {
				t.Errorf("hunk %d start drifted: %+v != %+v", j, want, got)
			}
			if len(want.Lines) != len(got.Lines) {
				t.Errorf("hunk %d line count drifted: %d != %d", j, len(want.Lines), len(got.Lines))
			}
		}
	}
}

func TestNewFileEmit(t *testing.T) {
	fc := FileChange{
		NewPath: "bar.c",
		IsNew:   true,
		Hunks: []Hunk{{
			OldStart: 0, OldCount: 0, NewStart: 1, NewCount: 1,
			Lines: []Line{{Op: LineAdded, Text: "int x;"}},
		}},
	}

	out := Emit([]FileChange{fc})
	if !contains(out, "--- /dev/null") || !contains(out, "+++ b/bar.c") {
		t.Fatalf("new-file header missing /dev/null marker: %s", out)
	}

	reparsed, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reparsed) != 1 || reparsed[0].Path() != "bar.c" {
		t.Fatalf("round trip lost the new file: %+v", reparsed)
	}
}

func TestHunkValidateCatchesMismatch(t *testing.T) {
	h := Hunk{
		OldStart: 1, OldCount: 2, NewStart: 1, NewCount: 2,
		Lines: []Line{{Op: LineContext, Text: "a"}},
	}
	if err := h.Validate(); err == nil {
		t.Fatal("expected Validate to catch a line-count mismatch")
	}
}

func TestSafeJoinRejectsTraversal(t *testing.T) {
	cases := []string{
		"../../etc/passwd",
		"a/../../b",
		"/etc/passwd",
	}
	for _, rel := range cases {
		if _, err := SafeJoin("/repo", rel); err == nil {
			t.Fatalf("expected SafeJoin to reject %q", rel)
		}
	}
}

func TestSafeJoinAcceptsOrdinaryPaths(t *testing.T) {
	got, err := SafeJoin("/repo", "internal/foo.go")
	if err != nil {
		t.Fatalf("SafeJoin: %v", err)
	}
	if got != "/repo/internal/foo.go" {
		t.Fatalf("unexpected joined path: %q", got)
	}
}

func TestValidateWithinRepoCatchesEscape(t *testing.T) {
	files := []FileChange{
		{NewPath: "ok.txt"},
		{NewPath: "../../outside.txt"},
	}
	if err := ValidateWithinRepo("/repo", files); err == nil {
		t.Fatal("expected ValidateWithinRepo to catch the escaping path")
	}
}

func TestValidateWithinRepoAllowsOrdinaryFiles(t *testing.T) {
	files := []FileChange{
		{NewPath: "a.txt"},
		{OldPath: "b.txt", NewPath: "c.txt", IsRename: true},
	}
	if err := ValidateWithinRepo("/repo", files); err != nil {
		t.Fatalf("ValidateWithinRepo: %v", err)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
