package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/rewiredtx/rewire/internal/constants"
	"github.com/rewiredtx/rewire/internal/session"
	"github.com/rewiredtx/rewire/internal/tui/components/patients"
	"github.com/rewiredtx/rewire/internal/tui/forms"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.patients.SetSize(msg.Width-4, msg.Height-6)
		m.planModel.SetSize(msg.Width-8, 8)
		return m, nil

	case SettingsChangedMsg:
		m.status = "Settings reloaded"
		m.refresh()
		return m, nil
	}

	switch m.state {
	case constants.StateSessionForm, constants.StatePlanForm,
		constants.StateConfirmSend, constants.StateConfirmSync:
		return m.updateForm(msg)
	case constants.StatePatientSelect:
		return m.updatePatients(msg)
	case constants.StatePlanSent:
		if _, ok := msg.(tea.KeyMsg); ok {
			m.state = constants.StateDashboard
		}
		return m, nil
	}
	return m.updateDashboard(msg)
}

func (m Model) updatePatients(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case patients.SelectPatientMsg:
		if err := m.svc.Sessions().Select(msg.Patient.ID); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = ""
		m.state = constants.StateDashboard
		m.refresh()
		m.refreshStates()
		return m, nil

	case tea.KeyMsg:
		if !m.patients.Filtering() {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.quitting = true
				return m, tea.Quit
			case key.Matches(msg, m.keys.Back):
				if m.svc.Sessions().Active() != "" {
					m.state = constants.StateDashboard
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.patients, cmd = m.patients.Update(msg)
	return m, cmd
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(keyMsg, m.keys.Patients), key.Matches(keyMsg, m.keys.Back):
		m.refreshStates()
		m.state = constants.StatePatientSelect
	case key.Matches(keyMsg, m.keys.Sync):
		m.confirmed = true
		m.form = forms.NewConfirmForm("Sync the latest biometric and EEG exports?", &m.confirmed)
		m.state = constants.StateConfirmSync
		return m, m.form.Init()
	case key.Matches(keyMsg, m.keys.Assess):
		if _, ok := m.activePatient(); !ok {
			return m, nil
		}
		m.sessionForm = forms.NewSessionFormModel()
		if ps, ok := m.current(); ok && ps.Assessment != nil {
			m.sessionForm.Meds = ps.Meds
			m.sessionForm.Observations = ps.Observations
		}
		m.form = forms.NewSessionForm(m.sessionForm)
		m.state = constants.StateSessionForm
		return m, m.form.Init()
	case key.Matches(keyMsg, m.keys.Plan):
		ps, ok := m.current()
		if !ok {
			return m, nil
		}
		if ps.State == session.StateNoAssessment || ps.WorkingPlan == nil {
			m.err = session.ErrNotAssessed
			return m, nil
		}
		m.err = nil
		m.planForm = forms.NewPlanFormModel(ps.Patient.Diagnosis, *ps.WorkingPlan)
		m.form = forms.NewPlanForm(m.planForm)
		m.state = constants.StatePlanForm
		return m, m.form.Init()
	case key.Matches(keyMsg, m.keys.Report):
		p, ok := m.activePatient()
		if !ok {
			return m, nil
		}
		path, err := m.svc.Report(p.ID, "")
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = "Report written to " + path
	case key.Matches(keyMsg, m.keys.Up), key.Matches(keyMsg, m.keys.Down):
		var cmd tea.Cmd
		m.planModel, cmd = m.planModel.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateForm routes input to the active huh form and acts on its result.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = constants.StateDashboard
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		cmds = append(cmds, m.completeForm())
	case huh.StateAborted:
		m.pendingPlan = nil
		m.state = constants.StateDashboard
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) completeForm() tea.Cmd {
	m.err = nil
	switch m.state {
	case constants.StateSessionForm:
		m.state = constants.StateDashboard
		p, ok := m.activePatient()
		if !ok {
			return nil
		}
		rec, _, err := m.svc.Assess(p.ID, m.sessionForm.Meds, m.sessionForm.Observations)
		if err != nil {
			m.err = err
			return nil
		}
		m.status = fmt.Sprintf("Assessed %s: %s risk (score %d/100)", p.Name, rec.Level, rec.Score)

	case constants.StatePlanForm:
		ps, ok := m.current()
		if !ok || ps.WorkingPlan == nil {
			m.state = constants.StateDashboard
			return nil
		}
		edited := m.planForm.Apply(*ps.WorkingPlan)
		m.pendingPlan = &edited
		m.confirmed = true
		m.form = forms.NewConfirmForm("Save & send this plan to "+ps.Patient.Name+"?", &m.confirmed)
		m.state = constants.StateConfirmSend
		return m.form.Init()

	case constants.StateConfirmSend:
		m.state = constants.StateDashboard
		if !m.confirmed || m.pendingPlan == nil {
			m.status = "Plan not sent"
			m.pendingPlan = nil
			break
		}
		edited := *m.pendingPlan
		m.pendingPlan = nil
		_, summary, err := m.svc.SendPlan(edited.PatientID, edited)
		if err != nil {
			m.err = err
			break
		}
		out, err := summary.JSON()
		if err != nil {
			m.err = err
			break
		}
		m.sentSummary = out
		m.status = "Plan sent to " + summary.Patient
		m.state = constants.StatePlanSent

	case constants.StateConfirmSync:
		m.state = constants.StateDashboard
		if !m.confirmed {
			return nil
		}
		res, err := m.svc.Sync("", "")
		if err != nil {
			m.err = err
			return nil
		}
		m.status = fmt.Sprintf("Synced %d biometric rows and %d EEG sessions", res.Info.BiometricRows, res.Info.EEGRows)
		if n := len(res.Biometric.Issues) + len(res.EEG.Issues); n > 0 {
			m.status += fmt.Sprintf(" (%d data issue(s), see 'rewire doctor')", n)
		}
	}
	m.refresh()
	m.refreshStates()
	return nil
}
