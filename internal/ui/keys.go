package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add      key.Binding
	StartAll key.Binding
	Cancel   key.Binding
	Clear    key.Binding
	Mark     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Format   key.Binding
	Browse   key.Binding
	Back     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Add:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add to queue")),
		StartAll: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "start all")),
		Cancel:   key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "cancel selected")),
		Clear:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear completed")),
		Mark:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "mark row")),
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		Format:   key.NewBinding(key.WithKeys("ctrl+f"), key.WithHelp("ctrl+f", "video/audio")),
		Browse:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "browse folders")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.StartAll, k.Cancel, k.Clear, k.Next, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.StartAll, k.Cancel, k.Clear},
		{k.Next, k.Prev, k.Mark, k.Format},
		{k.Browse, k.Back, k.Help, k.Quit},
	}
}
