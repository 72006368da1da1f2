package plan

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rewiredtx/rewire/internal/homework"
	"github.com/rewiredtx/rewire/internal/models"
)

var (
	slotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(26)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	sentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

// Model shows the patient's weekly homework plan in a scrollable viewport.
type Model struct {
	viewport viewport.Model
	Plan     *models.HomeworkPlan
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Plan == nil {
		return statusStyle.Render("No homework plan yet. Complete the session form to seed one.")
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetPlan replaces the displayed plan; nil clears it.
func (m *Model) SetPlan(plan *models.HomeworkPlan) {
	if plan == nil {
		m.Plan = nil
	} else {
		p := plan.Clone()
		m.Plan = &p
	}
	m.Render()
}

func (m *Model) Render() {
	m.viewport.SetContent(Content(m.Plan))
}

// Content renders a plan as slot lines followed by the note and send status.
func Content(p *models.HomeworkPlan) string {
	if p == nil {
		return "No plan loaded."
	}

	var b strings.Builder
	for _, slot := range models.Slots {
		game := p.Games[slot]
		if game == "" {
			game = "(unassigned)"
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			slotStyle.Render(slot.Label()),
			gameStyle.Render(game),
			statusStyle.Render(homework.FormatFrequency(p.Frequencies[slot])),
		)
	}
	if p.Note != "" {
		b.WriteString("\n" + statusStyle.Render("Message: ") + p.Note + "\n")
	}
	if p.Submitted && p.SentAt != nil {
		b.WriteString("\n" + sentStyle.Render("✓ Sent "+p.SentAt.Format("Mon 2 Jan 15:04")))
	} else {
		b.WriteString("\n" + statusStyle.Render("Not sent yet. Press 'e' to edit and send."))
	}
	return b.String()
}
