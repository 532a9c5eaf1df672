package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

const testOriginal = `	println("hello")
	println("goodbye")`

const testProposed = `	println("hello world")
	println("goodbye", "cruel world")`

func setupModel(t *testing.T) Model {
	t.Helper()
	m := New(testOriginal, testProposed)
	newM, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return newM.(Model)
}

func TestModelInit(t *testing.T) {
	m := setupModel(t)

	require.Nil(t, m.decision)
	require.NotEmpty(t, m.originalLines)
	require.NotEmpty(t, m.proposedLines)
}

func TestApprove(t *testing.T) {
	m := setupModel(t)

	newM, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = newM.(Model)

	require.NotNil(t, cmd)
	require.True(t, m.Decision())
}

func TestReject(t *testing.T) {
	m := setupModel(t)

	newM, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = newM.(Model)

	require.NotNil(t, cmd)
	require.False(t, m.Decision())
}

func TestQuitCountsAsReject(t *testing.T) {
	m := setupModel(t)

	newM, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = newM.(Model)

	require.NotNil(t, cmd)
	require.False(t, m.Decision())
}

func TestUndecidedDefaultsToReject(t *testing.T) {
	m := setupModel(t)
	require.False(t, m.Decision())
}

func TestScrolling(t *testing.T) {
	m := setupModel(t)

	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = newM.(Model)
	require.Equal(t, 1, m.scrollOffset)

	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = newM.(Model)
	require.Equal(t, 0, m.scrollOffset)

	// Can't scroll above 0
	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = newM.(Model)
	require.Equal(t, 0, m.scrollOffset)
}

func TestViewRenders(t *testing.T) {
	m := setupModel(t)

	view := m.View()
	require.NotEmpty(t, view)
	require.True(t, strings.Contains(view, "Original hunk") || strings.Contains(view, "hello"))
	require.Contains(t, view, "Proposed replacement")
}
