package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the application
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Item Actions
	Toggle   key.Binding
	EditTask key.Binding
	EditTree key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Delete   key.Binding
	CopyTree key.Binding
	Reset    key.Binding
	Cascade  key.Binding
	HideHint key.Binding

	// Views
	ListView     key.Binding
	ProgressView key.Binding

	// General
	Reload     key.Binding
	Help       key.Binding
	ThemeCycle key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default keybindings
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
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),

		Toggle: key.NewBinding(
			key.WithKeys("tab", " "),
			key.WithHelp("tab/space", "toggle done"),
		),
		EditTask: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit task"),
		),
		EditTree: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit tree"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move down"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		CopyTree: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy tree"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset"),
		),
		Cascade: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "check all previous"),
		),
		HideHint: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "hide hint"),
		),

		ListView: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "list"),
		),
		ProgressView: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "progress"),
		),

		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "reload source"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		ThemeCycle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "theme"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns short help bindings (for status bar)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns full help bindings (for help view)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Toggle, k.EditTask, k.EditTree, k.CopyTree},
		{k.MoveUp, k.MoveDown, k.Delete, k.Reset},
		{k.Cascade, k.HideHint},
		{k.ListView, k.ProgressView, k.Reload, k.ThemeCycle},
		{k.Help, k.Quit},
	}
}
