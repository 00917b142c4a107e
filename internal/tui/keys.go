package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	esc     key.Binding
	quit    key.Binding
	newItem key.Binding
	sync    key.Binding
	reload  key.Binding
	queue   key.Binding
	retry   key.Binding
	edit    key.Binding
	delete  key.Binding
	copy    key.Binding
	save    key.Binding
	version key.Binding
	yes     key.Binding
	no      key.Binding
}

var keys = keyMap{
	up:      key.NewBinding(key.WithKeys("up", "k")),
	down:    key.NewBinding(key.WithKeys("down", "j")),
	enter:   key.NewBinding(key.WithKeys("enter")),
	esc:     key.NewBinding(key.WithKeys("esc")),
	quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
	newItem: key.NewBinding(key.WithKeys("n")),
	sync:    key.NewBinding(key.WithKeys("s")),
	reload:  key.NewBinding(key.WithKeys("r")),
	queue:   key.NewBinding(key.WithKeys("p")),
	retry:   key.NewBinding(key.WithKeys("r")),
	edit:    key.NewBinding(key.WithKeys("e")),
	delete:  key.NewBinding(key.WithKeys("d")),
	copy:    key.NewBinding(key.WithKeys("c")),
	save:    key.NewBinding(key.WithKeys("ctrl+s")),
	version: key.NewBinding(key.WithKeys("v")),
	yes:     key.NewBinding(key.WithKeys("y")),
	no:      key.NewBinding(key.WithKeys("n")),
}
