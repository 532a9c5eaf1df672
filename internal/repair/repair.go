package repair

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Querier is the subset of *llm.Client the Repair Engine depends on. The
// narrow interface keeps this package testable without a real transport.
type Querier interface {
	Query(ctx context.Context, prompt string) (string, error)
}

// ApprovalFunc is consulted once per accepted repair when Limits.Interactive
// is set. It is backed by the approval TUI in the CLI surface; returning
// false treats the Reject as unresolved.
type ApprovalFunc func(originalHunk, proposedSnippet string) bool

// Input is everything the Repair Engine needs to turn one Reject into a
// destination-file edit.
type Input struct {
	CommitMessage string
	SourceBefore  string // section.Section.Text at the parent revision
	SourceAfter   string // section.Section.Text at the commit itself
	DestBefore    string // section.Section.Text in the working tree
	RejectHunk    string // the unified-diff text of the failed hunk
}

// Result is the outcome of a successful repair.
type Result struct {
	PatchedText   string // replacement text for the destination section
	Explanation   string
	ChangeSummary string
}

// Sentinel errors the Pipeline inspects to choose an outcome kind.
var (
	ErrTransport      = errors.New("llm transport error")
	ErrRefused        = errors.New("llm refused to produce a repair")
	ErrParseFailed    = errors.New("failed to parse llm response")
	ErrEmptySnippet   = errors.New("llm response contained no adapted code")
	ErrLimitsRejected = errors.New("llm repair rejected by configured limits")
	ErrDeclined       = errors.New("llm repair declined by interactive approval")
)

// sectionMarkerPrefixes mirrors original_source's fallback loop over "##"
// and "**" heading markers, since different models format headings
// differently.
var sectionMarkerPrefixes = []string{"##", "**"}

// Engine repairs one Reject at a time by composing a prompt, querying an
// LLM Client (through the cache, transparently), and parsing its response.
type Engine struct {
	Querier  Querier
	Limits   Limits
	Approval ApprovalFunc
}

// Repair implements spec.md §4.3 steps 3-6: compose the prompt, query the
// LLM, parse the response, and return the patched section text.
func (e *Engine) Repair(ctx context.Context, in Input) (Result, error) {
	nonce, err := GenerateNonce()
	if err != nil {
		return Result{}, fmt.Errorf("generating prompt nonce: %w", err)
	}

	prompt, err := ComposePrompt(Slots{
		Nonce:         nonce,
		CommitMessage: in.CommitMessage,
		SourceBefore:  in.SourceBefore,
		SourceAfter:   in.SourceAfter,
		DestBefore:    in.DestBefore,
		RejectHunk:    in.RejectHunk,
	})
	if err != nil {
		return Result{}, fmt.Errorf("composing repair prompt: %w", err)
	}

	destLines := strings.Count(in.DestBefore, "\n") + 1
	if e.Limits.AnyPre() {
		if err := e.Limits.CheckInput(prompt, destLines); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrLimitsRejected, err)
		}
	}

	response, err := e.Querier.Query(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if response == "" {
		return Result{}, fmt.Errorf("%w: empty response", ErrTransport)
	}

	if strings.Contains(response, nonce) {
		return Result{}, fmt.Errorf("%w: response echoed the boundary marker", ErrParseFailed)
	}
	if strings.Contains(response, RefusalPhrase) {
		return Result{}, ErrRefused
	}

	snippet, explanation, summary, err := parseResponse(response)
	if err != nil {
		return Result{}, err
	}

	if !ValidateExtractedContent(snippet) || !ValidateExtractedContent(explanation) {
		return Result{}, fmt.Errorf("%w: response contains invalid characters", ErrParseFailed)
	}

	if e.Limits.AnyPost() {
		if err := e.Limits.CheckOutput(in.RejectHunk, snippet); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrLimitsRejected, err)
		}
		if e.Limits.Interactive {
			approve := e.Approval
			if approve == nil {
				approve = func(string, string) bool { return false }
			}
			if !approve(in.RejectHunk, snippet) {
				return Result{}, ErrDeclined
			}
		}
	}

	return Result{
		PatchedText:   snippet,
		Explanation:   explanation,
		ChangeSummary: summary,
	}, nil
}

// parseResponse extracts the three required markdown sections from an LLM
// response, trying "##" headings first and falling back to "**" headings,
// grounded in original_source's match_prefix loop.
func parseResponse(response string) (snippet, explanation, summary string, err error) {
	var parser *FlatParser
	var adaptedSection string
	var found bool

	for _, prefix := range sectionMarkerPrefixes {
		parser = ParseFlat(response, prefix)
		adaptedSection, found = parser.Section(HeadingAdaptedSnippet)
		if found && strings.TrimSpace(adaptedSection) != "" {
			break
		}
		found = false
	}
	if !found {
		return "", "", "", fmt.Errorf("%w: missing %q heading", ErrParseFailed, HeadingAdaptedSnippet)
	}

	blocks := FencedBlocks(adaptedSection)
	if len(blocks) == 0 {
		return "", "", "", fmt.Errorf("%w: no fenced code block under %q", ErrEmptySnippet, HeadingAdaptedSnippet)
	}
	if len(blocks) > 1 {
		return "", "", "", fmt.Errorf("%w: multiple fenced code blocks under %q", ErrParseFailed, HeadingAdaptedSnippet)
	}

	snippet = strings.TrimRight(blocks[0], "\n")
	if strings.TrimSpace(snippet) == "" {
		return "", "", "", fmt.Errorf("%w: adapted code block was empty", ErrEmptySnippet)
	}

	explanation, _ = parser.Section(HeadingExplanation)
	summary, _ = parser.Section(HeadingChangeSummary)

	return snippet, explanation, summary, nil
}
