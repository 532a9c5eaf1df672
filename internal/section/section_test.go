package section

import (
	"strings"
	"testing"
)

func TestExtractGoFunction(t *testing.T) {
	src := `package main

func helper(x int) int {
	y := x + 1
	return y
}

func main() {
	helper(1)
}
`
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")

	e := New()
	// "y := x + 1" is line 4.
	sec := e.Extract("main.go", "HEAD", lines, 4, 4)

	if !strings.Contains(sec.Text, "func helper(x int) int {") {
		t.Fatalf("expected section to include the enclosing func signature, got:\n%s", sec.Text)
	}
	if !strings.Contains(sec.Text, "return y") {
		t.Fatalf("expected section to include the function body, got:\n%s", sec.Text)
	}
	if strings.Contains(sec.Text, "func main()") {
		t.Fatalf("section leaked into the next function:\n%s", sec.Text)
	}
	if sec.StartLine > 4 || sec.EndLine < 4 {
		t.Fatalf("section %d-%d does not contain target line 4", sec.StartLine, sec.EndLine)
	}
}

func TestExtractFallsBackToFixedWindow(t *testing.T) {
	lines := make([]string, 30)
	for i := range lines {
		lines[i] = "plain data line"
	}

	e := New()
	sec := e.Extract("data.txt", "HEAD", lines, 15, 15)

	if sec.StartLine > 15 || sec.EndLine < 15 {
		t.Fatalf("fixed window does not contain target line: %d-%d", sec.StartLine, sec.EndLine)
	}
	if sec.EndLine-sec.StartLine+1 > 2*DefaultWindow+1 {
		t.Fatalf("fixed window too large: %d-%d", sec.StartLine, sec.EndLine)
	}
}

func TestExtractAlwaysContainsTargetRange(t *testing.T) {
	src := `func f() {
	a := 1
	b := 2
	c := 3
}
`
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	e := New()

	sec := e.Extract("f.go", "HEAD", lines, 2, 4)
	if sec.StartLine > 2 || sec.EndLine < 4 {
		t.Fatalf("section %d-%d does not contain target range 2-4", sec.StartLine, sec.EndLine)
	}
}
