package diffmodel

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightedLine represents a line with syntax-highlighted tokens.
type HighlightedLine struct {
	Tokens []HighlightToken
}

// HighlightToken is a syntax-highlighted chunk of text.
type HighlightToken struct {
	Text  string
	Color string // ANSI color string, empty for default
}

// Plain returns the concatenated plain text of all tokens.
func (hl HighlightedLine) Plain() string {
	var b strings.Builder
	for _, t := range hl.Tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// HighlightLines applies syntax highlighting to source lines. filename picks
// the lexer by extension when non-empty; otherwise the lexer is guessed from
// the content itself, which is what the Repair Engine's approval gate needs
// since a Reject carries no filename by the time it reaches the TUI.
func HighlightLines(filename string, lines []string) []HighlightedLine {
	source := strings.Join(lines, "\n")

	lexer := lexerFor(filename, source)
	if lexer == nil {
		return plainLines(lines)
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return plainLines(lines)
	}

	style := styles.Get("dracula")
	if style == nil {
		style = styles.Fallback
	}

	result := make([]HighlightedLine, 0, len(lines))
	current := HighlightedLine{}

	for _, token := range iterator.Tokens() {
		// Split tokens that span multiple lines
		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				result = append(result, current)
				current = HighlightedLine{}
			}
			if part != "" {
				current.Tokens = append(current.Tokens, HighlightToken{
					Text:  part,
					Color: tokenColor(style, token.Type),
				})
			}
		}
	}
	result = append(result, current)

	// Pad result if we have fewer lines than input
	for len(result) < len(lines) {
		result = append(result, HighlightedLine{Tokens: []HighlightToken{{Text: ""}}})
	}

	return result
}

func plainLines(lines []string) []HighlightedLine {
	result := make([]HighlightedLine, len(lines))
	for i, line := range lines {
		result[i] = HighlightedLine{Tokens: []HighlightToken{{Text: line}}}
	}
	return result
}

func lexerFor(filename, source string) chroma.Lexer {
	var lexer chroma.Lexer
	if filename != "" {
		lexer = lexers.Match(filename)
		if lexer == nil {
			if ext := filepath.Ext(filename); ext != "" {
				lexer = lexers.Match("file" + ext)
			}
		}
	}
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer != nil {
		lexer = chroma.Coalesce(lexer)
	}
	return lexer
}

func tokenColor(style *chroma.Style, tt chroma.TokenType) string {
	entry := style.Get(tt)
	if entry.Colour.IsSet() {
		return entry.Colour.String()
	}
	return ""
}
