// Package tui implements the terminal approval gate shown to an operator
// when the LLM hunk-repair engine wants to substitute a proposed snippet for
// a hunk that failed to apply cleanly.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/pickgo/internal/diffmodel"
)

// Model is the Bubble Tea model for a single repair approval decision.
type Model struct {
	originalHunk    string
	proposedSnippet string

	originalLines  []diffmodel.HighlightedLine
	proposedLines  []diffmodel.HighlightedLine

	width  int
	height int

	scrollOffset int

	decision *bool // nil until the operator answers; true = approve
}

// New creates an approval-gate model for one hunk-repair proposal. Neither
// side carries a filename, so highlighting is guessed from content.
func New(originalHunk, proposedSnippet string) Model {
	return Model{
		originalHunk:    originalHunk,
		proposedSnippet: proposedSnippet,
		originalLines:   diffmodel.HighlightLines("", strings.Split(originalHunk, "\n")),
		proposedLines:   diffmodel.HighlightLines("", strings.Split(proposedSnippet, "\n")),
	}
}

// Decision reports the operator's answer once the program has exited.
// It returns false (reject) if the model never reached a decision, which
// matches quitting without an explicit answer.
func (m Model) Decision() bool {
	return m.decision != nil && *m.decision
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Approve):
			approved := true
			m.decision = &approved
			return m, tea.Quit

		case key.Matches(msg, keys.Reject), key.Matches(msg, keys.Quit):
			rejected := false
			m.decision = &rejected
			return m, tea.Quit

		case key.Matches(msg, keys.Down):
			if m.scrollOffset < m.maxLines()-1 {
				m.scrollOffset++
			}

		case key.Matches(msg, keys.Up):
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}
		}
	}

	return m, nil
}

func (m Model) maxLines() int {
	n := len(m.originalLines)
	if len(m.proposedLines) > n {
		n = len(m.proposedLines)
	}
	return n
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	paneWidth := (m.width - 3) / 2
	paneHeight := m.height - 3 // status bar + borders

	original := m.renderPane("Original hunk (failed to apply)", originalHeaderStyle, m.originalLines, paneWidth, paneHeight)
	proposed := m.renderPane("Proposed replacement", proposedHeaderStyle, m.proposedLines, paneWidth, paneHeight)

	main := lipgloss.JoinHorizontal(lipgloss.Top, original, " ", proposed)
	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

func (m Model) renderPane(title string, headerStyle lipgloss.Style, lines []diffmodel.HighlightedLine, width, height int) string {
	innerWidth := width - 4
	innerHeight := height - 2
	visibleLines := innerHeight - 2
	if visibleLines < 1 {
		visibleLines = 1
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteByte('\n')

	end := m.scrollOffset + visibleLines
	if end > len(lines) {
		end = len(lines)
	}
	start := m.scrollOffset
	if start > len(lines) {
		start = len(lines)
	}

	for i := start; i < end; i++ {
		text := lines[i].Plain()
		if innerWidth > 0 && len(text) > innerWidth {
			text = text[:innerWidth-1] + "…"
		}
		b.WriteString(contextLineStyle.Render(text))
		if i < end-1 {
			b.WriteByte('\n')
		}
	}

	return paneStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) renderStatusBar() string {
	left := fmt.Sprintf(" Line %d/%d", m.scrollOffset+1, m.maxLines())
	right := fmt.Sprintf("%s approve  %s reject  %s ",
		helpKeyStyle.Render("y"), helpKeyStyle.Render("n"), helpKeyStyle.Render("q quits as reject"))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// Run shows the approval gate for one hunk-repair proposal and blocks until
// the operator approves or rejects it.
func Run(originalHunk, proposedSnippet string) (bool, error) {
	m := New(originalHunk, proposedSnippet)
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}
	return finalModel.(Model).Decision(), nil
}

// Approval adapts Run to repair.ApprovalFunc's signature, for wiring
// directly into a repair.Engine when interactive mode is enabled.
func Approval(originalHunk, proposedSnippet string) bool {
	approved, err := Run(originalHunk, proposedSnippet)
	if err != nil {
		return false
	}
	return approved
}
