package homework

import (
	"encoding/json"
	"fmt"

	"github.com/rewiredtx/rewire/internal/models"
)

// Summary is the payload sent to the patient app when a plan is submitted.
type Summary struct {
	Patient   string            `json:"Patient"`
	Diagnosis models.Diagnosis  `json:"Diagnosis"`
	Risk      models.RiskLevel  `json:"Risk"`
	Games     map[string]string `json:"Games"`
	Message   string            `json:"Message"`
}

// FormatFrequency renders a weekly frequency the way patients see it.
func FormatFrequency(n int) string {
	return fmt.Sprintf("%d×/wk", n)
}

func NewSummary(patient models.Patient, plan models.HomeworkPlan) Summary {
	games := make(map[string]string, len(plan.Games))
	for _, slot := range models.Slots {
		if g := plan.Games[slot]; g != "" {
			games[g] = FormatFrequency(plan.Frequencies[slot])
		}
	}
	return Summary{
		Patient:   patient.Name,
		Diagnosis: patient.Diagnosis,
		Risk:      plan.RiskLevel,
		Games:     games,
		Message:   plan.Note,
	}
}

// JSON renders the summary indented for display.
func (s Summary) JSON() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode plan summary: %w", err)
	}
	return string(data), nil
}
