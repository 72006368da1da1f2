package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rewiredtx/rewire/internal/constants"
	"github.com/rewiredtx/rewire/internal/errors"
	"github.com/rewiredtx/rewire/internal/tui/components/vitals"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StatePatientSelect:
		content = m.patients.View()
	case constants.StateSessionForm:
		content = m.viewForm("In-clinic session")
	case constants.StatePlanForm:
		content = m.viewForm("Homework plan builder")
	case constants.StateConfirmSend, constants.StateConfirmSync:
		content = m.viewForm("")
	case constants.StatePlanSent:
		content = m.viewPlanSent()
	default:
		content = m.viewDashboard()
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
		m.viewFooter(),
	))
}

func (m Model) viewHeader() string {
	title := headerStyle.Render("ReWire · Therapist dashboard")
	p, ok := m.activePatient()
	if !ok {
		return title + "\n"
	}
	line := fmt.Sprintf(" %s · %s · %s", p.Name, p.ID, p.Diagnosis)
	if ps, ok := m.current(); ok {
		line += " · " + ps.State.String()
	}
	return title + subtleStyle.Render(line) + "\n"
}

func (m Model) viewDashboard() string {
	if m.snapshot == nil {
		return subtleStyle.Render("Select a patient with 'p'.")
	}
	snap := m.snapshot

	sync := "Never synced. Press 's' to load the latest exports."
	if snap.LastSync != nil {
		sync = "Last sync " + snap.LastSync.SyncedAt.Format("Mon 2 Jan 15:04") +
			" (" + humanAge(time.Since(snap.LastSync.SyncedAt)) + ")"
	}

	assessment := vitals.Risk(nil)
	if ps, ok := m.current(); ok && ps.Assessment != nil {
		assessment = vitals.Risk(ps.Assessment)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(vitals.Biometrics(snap.Latest)),
		panelStyle.Render(assessment),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		subtleStyle.Render(sync),
		top,
		panelStyle.Render(vitals.EEGTrend(snap.EEG, snap.Summary)),
		panelStyle.Render(m.planModel.View()),
	)
}

func (m Model) viewForm(title string) string {
	if m.form == nil {
		return ""
	}
	if title == "" {
		return m.form.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, headerStyle.Render(title), "", m.form.View())
}

func (m Model) viewPlanSent() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		statusStyle.Render("✓ Plan saved and sent"),
		"",
		panelStyle.Render(m.sentSummary),
		"",
		subtleStyle.Render("Press any key to return to the dashboard."),
	)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return errorStyle.Render(errors.Format(m.err))
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewFooter() string {
	return footerStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		constants.ContactNotice,
		constants.DemoNotice,
		constants.RegulatoryNotice,
		constants.ReleaseCaption,
	))
}

func humanAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}
