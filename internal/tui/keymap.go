package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the browser.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Drill  key.Binding
	Detail key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Drill: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "indexes"),
		),
		Detail: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "info"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "left", "h"),
			key.WithHelp("backspace", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
