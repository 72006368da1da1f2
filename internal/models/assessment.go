package models

import (
	"fmt"
	"strings"
	"time"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// Icon returns the traffic-light marker shown next to a risk level
func (l RiskLevel) Icon() string {
	switch l {
	case RiskHigh:
		return "🔴"
	case RiskModerate:
		return "🟡"
	default:
		return "🟢"
	}
}

func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, nil
	case "moderate":
		return RiskModerate, nil
	case "high":
		return RiskHigh, nil
	}
	return "", fmt.Errorf("unknown risk level: %q", s)
}

type RiskAssessment struct {
	Score   int       `json:"score"`
	Level   RiskLevel `json:"level"`
	Reasons []string  `json:"reasons"`
}

// MedsAdherence is the therapist-reported medication adherence answer.
type MedsAdherence string

const (
	MedsYes MedsAdherence = "Yes"
	MedsNo  MedsAdherence = "No"
	MedsNA  MedsAdherence = "NA"
)

// Adherent reports whether the answer counts as adherent for scoring.
// Only an explicit "No" is penalised.
func (m MedsAdherence) Adherent() bool {
	return m != MedsNo
}

func ParseMedsAdherence(s string) (MedsAdherence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true":
		return MedsYes, nil
	case "no", "n", "false":
		return MedsNo, nil
	case "na", "n/a", "":
		return MedsNA, nil
	}
	return "", fmt.Errorf("invalid medication adherence %q (expected yes, no or na)", s)
}

// ZPair holds the per-session z-scores of both EEG channels.
type ZPair struct {
	FAAZ float64 `json:"faa_z"`
	TBRZ float64 `json:"tbr_z"`
}

type NeuroProgress struct {
	Window   []ZPair   `json:"window"`
	Series   []float64 `json:"neuro_score_series"`
	Baseline float64   `json:"baseline"`
	Latest   float64   `json:"latest"`
	Delta    float64   `json:"delta"`
}

// AssessmentRecord is a risk assessment as recorded during a clinic visit.
type AssessmentRecord struct {
	ID           string        `json:"id"`
	PatientID    string        `json:"patient_id"`
	AssessedAt   time.Time     `json:"assessed_at"`
	Meds         MedsAdherence `json:"meds"`
	Observations string        `json:"observations,omitempty"`
	RiskAssessment
}
