package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings. It satisfies help.KeyMap.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	NextView key.Binding
	Add      key.Binding
	Refresh  key.Binding
	Read     key.Binding
	Favorite key.Binding
	Delete   key.Binding
	Language key.Binding
	Sources  key.Binding
	Debug    key.Binding
	Help     key.Binding
	Escape   key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		NextView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
		Add:      key.NewBinding(key.WithKeys("a", "+"), key.WithHelp("a", "add topic")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Read:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "mark read")),
		Favorite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "save")),
		Delete:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		Language: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "language")),
		Sources:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "toggle source")),
		Debug:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "events")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextView, k.Add, k.Refresh, k.Favorite, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.NextView, k.Add, k.Refresh, k.Read},
		{k.Favorite, k.Delete, k.Language, k.Sources},
		{k.Debug, k.Help, k.Escape, k.Quit},
	}
}
