package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit         key.Binding
	Search       key.Binding
	Submit       key.Binding
	StopEditing  key.Binding
	Open         key.Binding
	Back         key.Binding
	Up           key.Binding
	Down         key.Binding
	PrevPage     key.Binding
	NextPage     key.Binding
	Refresh      key.Binding
	First        key.Binding
	Last         key.Binding
	Comments     key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	ClearHistory key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Search:       key.NewBinding(key.WithKeys("/", "i"), key.WithHelp("/", "search")),
		Submit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		StopEditing:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop editing")),
		Open:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:         key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Up:           key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		PrevPage:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "prev page")),
		NextPage:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "next page")),
		Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		First:        key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "first")),
		Last:         key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "last")),
		Comments:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comments")),
		ScrollUp:     key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("ctrl+u", "scroll up")),
		ScrollDown:   key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d", "scroll down")),
		ClearHistory: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear history")),
	}
}

// help returns the bindings shown in the footer for the current screen.
func (k keyMap) help(s screen, editing bool) []key.Binding {
	switch s {
	case screenBoard:
		return []key.Binding{k.Up, k.Down, k.Open, k.PrevPage, k.NextPage, k.First, k.Last, k.Refresh, k.Back, k.Quit}
	case screenPost:
		prev, next := k.Up, k.Down
		prev.SetHelp("↑/k", "prev floor")
		next.SetHelp("↓/j", "next floor")
		return []key.Binding{prev, next, k.PrevPage, k.NextPage, k.ScrollDown, k.Comments, k.Refresh, k.Back, k.Quit}
	case screenComments:
		return []key.Binding{k.Up, k.Down, k.Refresh, k.Back, k.Quit}
	}
	if editing {
		return []key.Binding{k.Submit, k.StopEditing}
	}
	return []key.Binding{k.Search, k.Up, k.Down, k.Open, k.ClearHistory, k.Quit}
}
