package models

import "time"

// Slot is a position in the weekly homework plan.
type Slot string

const (
	SlotCognitive Slot = "cognitive"
	SlotEmotion   Slot = "emotion"
	SlotEvening   Slot = "evening"
)

// Slots lists plan slots in display order.
var Slots = []Slot{SlotCognitive, SlotEmotion, SlotEvening}

func (s Slot) Label() string {
	switch s {
	case SlotCognitive:
		return "Cognitive Game"
	case SlotEmotion:
		return "Emotion Regulation Game"
	case SlotEvening:
		return "Evening Wind-down Game"
	}
	return string(s)
}

type HomeworkPlan struct {
	ID          string          `json:"id,omitempty"`
	PatientID   string          `json:"patient_id"`
	RiskLevel   RiskLevel       `json:"risk_level"`
	Games       map[Slot]string `json:"games"`
	Frequencies map[Slot]int    `json:"frequencies"`
	Note        string          `json:"note"`
	Submitted   bool            `json:"submitted"`
	SentAt      *time.Time      `json:"sent_at,omitempty"`
}

// Clone returns a deep copy so session edits never alias stored plans.
func (p HomeworkPlan) Clone() HomeworkPlan {
	c := p
	c.Games = make(map[Slot]string, len(p.Games))
	for k, v := range p.Games {
		c.Games[k] = v
	}
	c.Frequencies = make(map[Slot]int, len(p.Frequencies))
	for k, v := range p.Frequencies {
		c.Frequencies[k] = v
	}
	if p.SentAt != nil {
		t := *p.SentAt
		c.SentAt = &t
	}
	return c
}
