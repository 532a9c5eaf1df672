package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keybindings for the repair approval gate: a single
// hunk's original text against the model's proposed replacement, approved
// or rejected with one keystroke.
type keyMap struct {
	Approve key.Binding
	Reject  key.Binding
	Up      key.Binding
	Down    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Approve: key.NewBinding(
		key.WithKeys("y", "a"),
		key.WithHelp("y/a", "approve"),
	),
	Reject: key.NewBinding(
		key.WithKeys("n", "r"),
		key.WithHelp("n/r", "reject"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "scroll up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "scroll down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit (reject)"),
	),
}
