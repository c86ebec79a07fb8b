package tui

import (
	"github.com/charmbracelet/bubbles/v2/key"
)

type KeyMap struct {
	Expand,
	MarkRead,
	Pin,
	Copy,
	Filter,
	ClearFilter,
	Reload,
	Help,
	Quit key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Expand: key.NewBinding(
			key.WithKeys("enter", "space"),
			key.WithHelp("enter", "expand"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "read/unread"),
		),
		Pin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pin"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy url"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// keyHelp joins the app and list bindings for the help footer.
type keyHelp struct {
	app  KeyMap
	list interface {
		ShortHelp() []key.Binding
		FullHelp() [][]key.Binding
	}
}

func (k keyHelp) ShortHelp() []key.Binding {
	return []key.Binding{
		k.app.Expand,
		k.app.MarkRead,
		k.app.Pin,
		k.app.Filter,
		k.app.Help,
		k.app.Quit,
	}
}

func (k keyHelp) FullHelp() [][]key.Binding {
	groups := [][]key.Binding{
		{k.app.Expand, k.app.MarkRead, k.app.Pin, k.app.Copy},
		{k.app.Filter, k.app.ClearFilter, k.app.Reload, k.app.Quit},
	}
	return append(groups, k.list.FullHelp()...)
}
