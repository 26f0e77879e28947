package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Knew   key.Binding
	Missed key.Binding
	Skip   key.Binding
	Next   key.Binding
	Retry  key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Knew: key.NewBinding(
			key.WithKeys("y", "k", "right"),
			key.WithHelp("y", "knew it"),
		),
		Missed: key.NewBinding(
			key.WithKeys("n", "j", "left"),
			key.WithHelp("n", "missed"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip block"),
		),
		Next: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "next block"),
			key.WithDisabled(),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry save"),
			key.WithDisabled(),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Knew, k.Missed, k.Skip, k.Next, k.Retry, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// drilling enables the bindings that judge items.
func (k keyMap) drilling() keyMap {
	k.Knew.SetEnabled(true)
	k.Missed.SetEnabled(true)
	k.Skip.SetEnabled(true)
	k.Next.SetEnabled(false)
	k.Retry.SetEnabled(false)
	return k
}

// reviewing enables the bindings shown after a block is committed.
func (k keyMap) reviewing() keyMap {
	k.Knew.SetEnabled(false)
	k.Missed.SetEnabled(false)
	k.Skip.SetEnabled(false)
	k.Next.SetEnabled(true)
	k.Retry.SetEnabled(false)
	return k
}

// failed enables retrying a commit that could not be saved.
func (k keyMap) failed() keyMap {
	k = k.reviewing()
	k.Next.SetEnabled(false)
	k.Retry.SetEnabled(true)
	return k
}
