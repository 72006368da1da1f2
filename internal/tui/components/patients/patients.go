package patients

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/session"
)

// SelectPatientMsg is sent when the therapist picks a patient.
type SelectPatientMsg struct {
	Patient models.Patient
}

type Item struct {
	Patient models.Patient
	State   session.State
}

func (i Item) Title() string { return i.Patient.Name }
func (i Item) Description() string {
	return fmt.Sprintf("%s · %s · %s", i.Patient.ID, i.Patient.Diagnosis, i.State)
}
func (i Item) FilterValue() string { return i.Patient.Name + " " + i.Patient.ID }

type KeyMap struct {
	Select key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open patient"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(roster []models.Patient, width, height int) Model {
	l := list.New(items(roster, nil), list.NewDefaultDelegate(), width, height)
	l.Title = "Patients"
	l.SetShowHelp(false) // help is rendered by the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Select}
	}
	return Model{list: l, keys: keys}
}

func items(roster []models.Patient, states map[string]session.State) []list.Item {
	out := make([]list.Item, len(roster))
	for i, p := range roster {
		out[i] = Item{Patient: p, State: states[p.ID]}
	}
	return out
}

// SetStates refreshes the visit state shown next to each patient.
func (m *Model) SetStates(roster []models.Patient, states map[string]session.State) {
	m.list.SetItems(items(roster, states))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if key.Matches(msg, m.keys.Select) {
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return SelectPatientMsg{Patient: i.Patient} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Filtering reports whether the list is capturing keys for its filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}
