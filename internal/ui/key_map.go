package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	sections key.Binding
	nextTab  key.Binding
	prevTab  key.Binding
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	toggle   key.Binding
	next     key.Binding
	prev     key.Binding
	seekBack key.Binding
	seekFwd  key.Binding
	volUp    key.Binding
	volDown  key.Binding
	add      key.Binding
	remove   key.Binding
	delete   key.Binding
	seed     key.Binding
	form     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		sections: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "section")),
		nextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next section")),
		prevTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev section")),
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		seekBack: key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "-10s")),
		seekFwd:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "+10s")),
		volUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		volDown:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to library")),
		remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete track")),
		seed:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "seed catalog")),
		form:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "ingest")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.sections, k.enter, k.toggle, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.sections, k.nextTab, k.up, k.down, k.enter},
		{k.toggle, k.next, k.prev, k.seekBack, k.seekFwd, k.volUp, k.volDown},
		{k.add, k.remove, k.delete, k.seed, k.form, k.quit},
	}
}
