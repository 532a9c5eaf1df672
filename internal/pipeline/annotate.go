package pipeline

import "strings"

// composeMessage appends annotations to originalMessage in the exact order
// spec.md §6 requires: the "Applied with" line, zero or more dependency
// trailers, an -x-style origin line, then a sign-off trailer. Each is on its
// own line, preceded by a blank line.
func composeMessage(originalMessage string, annotations []string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(originalMessage, "\n"))
	for _, a := range annotations {
		b.WriteString("\n\n")
		b.WriteString(a)
	}
	return b.String()
}

func originLine(commitID string) string {
	return "(cherry picked from commit " + commitID + ")"
}

func signoffLine(authorNameEmail string) string {
	return "Signed-off-by: " + authorNameEmail
}
