package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Patients key.Binding
	Sync     key.Binding
	Assess   key.Binding
	Plan     key.Binding
	Report   key.Binding
	Up       key.Binding
	Down     key.Binding
	Back     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Assess, k.Plan, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Patients, k.Sync, k.Assess, k.Plan, k.Report},
		{k.Up, k.Down, k.Back, k.Help, k.Quit},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Patients: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "patients"),
		),
		Sync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sync data"),
		),
		Assess: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "session form"),
		),
		Plan: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit & send plan"),
		),
		Report: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "write report"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
