package patients

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/session"
)

func TestItemDescription(t *testing.T) {
	tests := []struct {
		name  string
		state session.State
		want  string
	}{
		{"not assessed", session.StateNoAssessment, "RW-001 · PTSD · no assessment"},
		{"assessed", session.StateAssessed, "RW-001 · PTSD · assessed"},
		{"sent", session.StatePlanSent, "RW-001 · PTSD · plan sent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := Item{Patient: models.Roster[0], State: tt.state}
			if got := i.Description(); got != tt.want {
				t.Errorf("Description() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnterSelectsPatient(t *testing.T) {
	m := New(models.Roster, 80, 20)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on enter")
	}
	msg, ok := cmd().(SelectPatientMsg)
	if !ok {
		t.Fatalf("expected SelectPatientMsg, got %T", cmd())
	}
	if msg.Patient.ID != models.Roster[0].ID {
		t.Errorf("selected %s, want %s", msg.Patient.ID, models.Roster[0].ID)
	}
	if m.Filtering() {
		t.Error("list should not be filtering")
	}
}

func TestSetStates(t *testing.T) {
	m := New(models.Roster, 80, 20)
	m.SetStates(models.Roster, map[string]session.State{"RW-002": session.StatePlanSent})
	if !strings.Contains(m.View(), "Jamie Chen") {
		t.Error("view should list the roster")
	}
	items := m.list.Items()
	if got := items[1].(Item).State; got != session.StatePlanSent {
		t.Errorf("RW-002 state = %v, want plan sent", got)
	}
}
