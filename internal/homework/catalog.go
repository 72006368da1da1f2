// Package homework holds the therapeutic game catalogs and the default
// weekly plan table keyed by risk level and diagnosis.
package homework

import "github.com/rewiredtx/rewire/internal/models"

var catalogs = map[models.Diagnosis][]string{
	models.DiagnosisPTSD: {"Cognitive Reframing", "Stress Inoculation", "Guided Breathing", "Emotion Labeling"},
	models.DiagnosisADHD: {"Focus Trainer", "Impulse Control Game", "Breath Pacer", "Visual Attention"},
	models.DiagnosisMDD:  {"Optimism Booster", "Cognitive Flexibility", "Mood Tracking", "Evening Wind-down"},
}

// Catalog returns a copy of the games available for a diagnosis.
func Catalog(d models.Diagnosis) []string {
	games := catalogs[d]
	out := make([]string, len(games))
	copy(out, games)
	return out
}

// InCatalog reports whether game belongs to the diagnosis catalog.
func InCatalog(d models.Diagnosis, game string) bool {
	for _, g := range catalogs[d] {
		if g == game {
			return true
		}
	}
	return false
}

// AvailableGames lists the catalog games for slot that are not already used
// by an earlier slot of the plan, in catalog order. The game currently in
// slot itself stays available.
func AvailableGames(d models.Diagnosis, plan models.HomeworkPlan, slot models.Slot) []string {
	taken := make(map[string]bool)
	for _, s := range models.Slots {
		if s == slot {
			break
		}
		if g := plan.Games[s]; g != "" {
			taken[g] = true
		}
	}

	var out []string
	for _, g := range catalogs[d] {
		if !taken[g] {
			out = append(out, g)
		}
	}
	return out
}
