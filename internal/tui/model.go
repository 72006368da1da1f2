package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/rewiredtx/rewire/internal/config"
	"github.com/rewiredtx/rewire/internal/constants"
	"github.com/rewiredtx/rewire/internal/dashboard"
	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/session"
	"github.com/rewiredtx/rewire/internal/tui/components/patients"
	"github.com/rewiredtx/rewire/internal/tui/components/plan"
	"github.com/rewiredtx/rewire/internal/tui/forms"
)

// SettingsChangedMsg is sent when the settings file changes on disk.
type SettingsChangedMsg struct {
	Settings config.Settings
}

type Model struct {
	svc           *dashboard.Service
	state         constants.SessionState
	keys          KeyMap
	help          help.Model
	patients      patients.Model
	planModel     plan.Model
	form          *huh.Form
	sessionForm   *forms.SessionFormModel
	planForm      *forms.PlanFormModel
	pendingPlan   *models.HomeworkPlan
	confirmed     bool
	snapshot      *dashboard.Snapshot
	status        string
	err           error
	sentSummary   string
	quitting      bool
	width, height int
}

func NewModel(svc *dashboard.Service) Model {
	m := Model{
		svc:       svc,
		state:     constants.StatePatientSelect,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		patients:  patients.New(models.Roster, 0, 0),
		planModel: plan.New(0, 0),
	}
	if id := svc.Sessions().Active(); id != "" {
		m.state = constants.StateDashboard
		m.refresh()
	}
	m.refreshStates()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case constants.StatePatientSelect:
		return []key.Binding{m.keys.Back, m.keys.Quit}
	case constants.StatePlanSent:
		return []key.Binding{m.keys.Back}
	case constants.StateDashboard:
		return []key.Binding{m.keys.Assess, m.keys.Plan, m.keys.Sync, m.keys.Patients, m.keys.Quit, m.keys.Help}
	}
	return []key.Binding{m.keys.Back}
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

// activePatient returns the selected patient, if any.
func (m Model) activePatient() (models.Patient, bool) {
	id := m.svc.Sessions().Active()
	if id == "" {
		return models.Patient{}, false
	}
	return models.FindPatient(id)
}

// refresh reloads the active patient's snapshot and working plan.
func (m *Model) refresh() {
	p, ok := m.activePatient()
	if !ok {
		m.snapshot = nil
		m.planModel.SetPlan(nil)
		return
	}
	snap, err := m.svc.Snapshot(p.ID)
	if err != nil {
		m.err = err
		return
	}
	m.snapshot = &snap
	if ps, ok := m.svc.Sessions().Get(p.ID); ok {
		m.planModel.SetPlan(ps.WorkingPlan)
	} else {
		m.planModel.SetPlan(nil)
	}
}

func (m *Model) refreshStates() {
	states := make(map[string]session.State, len(models.Roster))
	for _, p := range models.Roster {
		if ps, ok := m.svc.Sessions().Get(p.ID); ok {
			states[p.ID] = ps.State
		}
	}
	m.patients.SetStates(models.Roster, states)
}

// current returns the active patient's visit state.
func (m Model) current() (session.PatientSession, bool) {
	return m.svc.Sessions().Current()
}
