// Package forms holds the huh forms used by both the TUI and the interactive
// CLI commands.
package forms

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/rewiredtx/rewire/internal/homework"
	"github.com/rewiredtx/rewire/internal/models"
)

// SessionFormModel holds the in-clinic session answers.
type SessionFormModel struct {
	Meds         models.MedsAdherence
	Observations string
}

func NewSessionFormModel() *SessionFormModel {
	return &SessionFormModel{Meds: models.MedsYes}
}

// NewSessionForm asks for medication adherence and session observations
func NewSessionForm(fm *SessionFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[models.MedsAdherence]().
				Title("Medication taken as prescribed since the last visit?").
				Options(
					huh.NewOption("Yes", models.MedsYes),
					huh.NewOption("No", models.MedsNo),
					huh.NewOption("N/A", models.MedsNA),
				).
				Value(&fm.Meds),
			huh.NewText().
				Title("Session observations").
				Placeholder("Mood, engagement, anything notable").
				Value(&fm.Observations),
		),
	).WithTheme(huh.ThemeDracula())
}

// PlanFormModel holds the plan builder fields, one entry per slot in
// models.Slots order.
type PlanFormModel struct {
	Diagnosis   models.Diagnosis
	Games       [3]string
	Frequencies [3]int
	Note        string
}

// NewPlanFormModel pre-fills the builder from a working plan.
func NewPlanFormModel(diagnosis models.Diagnosis, plan models.HomeworkPlan) *PlanFormModel {
	fm := &PlanFormModel{Diagnosis: diagnosis, Note: plan.Note}
	for i, slot := range models.Slots {
		fm.Games[i] = plan.Games[slot]
		fm.Frequencies[i] = plan.Frequencies[slot]
		if fm.Frequencies[i] < homework.MinFrequency {
			fm.Frequencies[i] = homework.MinFrequency
		}
	}
	return fm
}

// Apply copies the form values onto base.
func (fm *PlanFormModel) Apply(base models.HomeworkPlan) models.HomeworkPlan {
	plan := base.Clone()
	for i, slot := range models.Slots {
		plan.Games[slot] = fm.Games[i]
		plan.Frequencies[slot] = fm.Frequencies[i]
	}
	plan.Note = strings.TrimSpace(fm.Note)
	return plan
}

// options lists the games still open to slot i given the earlier picks.
func (fm *PlanFormModel) options(i int) []huh.Option[string] {
	partial := models.HomeworkPlan{Games: make(map[models.Slot]string, i)}
	for j := 0; j < i; j++ {
		partial.Games[models.Slots[j]] = fm.Games[j]
	}
	games := homework.AvailableGames(fm.Diagnosis, partial, models.Slots[i])
	return huh.NewOptions(games...)
}

func frequencyOptions() []huh.Option[int] {
	opts := make([]huh.Option[int], 0, homework.MaxFrequency)
	for n := homework.MinFrequency; n <= homework.MaxFrequency; n++ {
		opts = append(opts, huh.NewOption(homework.FormatFrequency(n), n))
	}
	return opts
}

// NewPlanForm builds the three-slot homework plan builder. Later slots only
// offer games not already picked in an earlier slot.
func NewPlanForm(fm *PlanFormModel) *huh.Form {
	var fields []huh.Field
	for i, slot := range models.Slots {
		i := i
		fields = append(fields,
			huh.NewSelect[string]().
				Title(slot.Label()).
				OptionsFunc(func() []huh.Option[string] { return fm.options(i) }, &fm.Games).
				Value(&fm.Games[i]).
				Validate(func(game string) error {
					for j := 0; j < i; j++ {
						if fm.Games[j] == game {
							return fmt.Errorf("%s is already assigned", game)
						}
					}
					return nil
				}),
			huh.NewSelect[int]().
				Title(slot.Label()+" frequency").
				Options(frequencyOptions()...).
				Value(&fm.Frequencies[i]),
		)
	}
	fields = append(fields,
		huh.NewText().
			Title("Message to patient").
			Value(&fm.Note),
	)
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeDracula())
}

// NewConfirmForm asks a yes/no question
func NewConfirmForm(title string, confirmed *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(confirmed),
		),
	).WithTheme(huh.ThemeDracula())
}
