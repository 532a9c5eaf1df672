package repair

import "strings"

// FlatParser extracts markdown sections independently of indentation,
// ignoring everything inside fenced code blocks when looking for headings.
// Grounded in original_source/markdown_parser.py's MarkdownFlatParser.
type FlatParser struct {
	prefix   string
	sections map[string]string
}

// ParseFlat parses input into sections keyed by lowercased heading text,
// treating any line starting with prefix (outside a fenced code block) as a
// new section heading.
func ParseFlat(input, prefix string) *FlatParser {
	sections := make(map[string]string)

	var currentHeading string
	var currentContent []string
	inCode := false
	haveSection := false

	flush := func() {
		if haveSection {
			sections[currentHeading] = strings.TrimSpace(strings.Join(currentContent, "\n"))
		}
	}

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inCode = !inCode
			if haveSection {
				currentContent = append(currentContent, line)
			}
			continue
		}

		if !inCode && strings.HasPrefix(line, prefix) {
			flush()
			rest := strings.TrimPrefix(line, prefix)
			rest = strings.TrimSuffix(strings.TrimSpace(rest), prefix)
			rest = strings.TrimSpace(rest)
			currentHeading = strings.ToLower(rest)
			currentContent = nil
			haveSection = true
			continue
		}

		if haveSection {
			currentContent = append(currentContent, line)
		}
	}
	flush()

	return &FlatParser{prefix: prefix, sections: sections}
}

// Section returns the trimmed content of the section whose heading equals
// header (case-insensitive), and whether it was found.
func (p *FlatParser) Section(header string) (string, bool) {
	content, ok := p.sections[strings.ToLower(header)]
	return content, ok
}

// Sections returns every parsed heading -> content pair, used for debug
// logging when a required section is missing.
func (p *FlatParser) Sections() map[string]string {
	return p.sections
}

// FencedBlocks returns the contents of every fenced code block inside text,
// in order. The Repair Engine rejects a response whose ADAPTED CODE SNIPPET
// section yields anything but exactly one.
func FencedBlocks(text string) []string {
	var blocks []string
	var current []string
	inBlock := false

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inBlock {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = nil
				inBlock = false
			} else {
				inBlock = true
			}
			continue
		}
		if inBlock {
			current = append(current, line)
		}
	}
	return blocks
}
