package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	language key.Binding
	capo     key.Binding
	sort     key.Binding
	order    key.Binding
	chords   key.Binding
	raise    key.Binding
	lower    key.Binding
	reload   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		language: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "language")),
		capo:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "capo only")),
		sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort by")),
		order:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "order")),
		chords:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "chords")),
		raise:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "transpose up")),
		lower:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "transpose down")),
		reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.language, k.capo, k.sort, k.order},
		{k.chords, k.raise, k.lower},
		{k.reload, k.quit},
	}
}
