package homework

import "github.com/rewiredtx/rewire/internal/models"

const (
	ptsdEmotionGame      = "Stress Inoculation"
	ptsdEmotionFrequency = 4
)

// levelDefault is one row of the default table: catalog positions and weekly
// frequencies for the cognitive, emotion and evening slots.
type levelDefault struct {
	games       [3]int
	frequencies [3]int
}

var defaults = map[models.RiskLevel]levelDefault{
	models.RiskHigh:     {games: [3]int{0, 1, 2}, frequencies: [3]int{7, 5, 7}},
	models.RiskModerate: {games: [3]int{0, 3, 2}, frequencies: [3]int{4, 3, 7}},
	models.RiskLow:      {games: [3]int{0, 1, 3}, frequencies: [3]int{2, 2, 5}},
}

// DefaultPlan seeds an editable plan for a risk level and diagnosis. PTSD
// patients always get Stress Inoculation four times a week in the emotion
// slot. The result carries no ID or patient; callers fill those in.
func DefaultPlan(level models.RiskLevel, diagnosis models.Diagnosis) models.HomeworkPlan {
	row, ok := defaults[level]
	if !ok {
		row = defaults[models.RiskLow]
	}
	catalog := catalogs[diagnosis]

	plan := models.HomeworkPlan{
		RiskLevel:   level,
		Games:       make(map[models.Slot]string, len(models.Slots)),
		Frequencies: make(map[models.Slot]int, len(models.Slots)),
	}
	for i, slot := range models.Slots {
		if idx := row.games[i]; idx < len(catalog) {
			plan.Games[slot] = catalog[idx]
		}
		plan.Frequencies[slot] = row.frequencies[i]
	}

	if diagnosis == models.DiagnosisPTSD {
		plan.Games[models.SlotEmotion] = ptsdEmotionGame
		plan.Frequencies[models.SlotEmotion] = ptsdEmotionFrequency
	}
	return plan
}
