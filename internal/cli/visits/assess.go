package visits

import (
	"encoding/json"
	"fmt"

	"github.com/rewiredtx/rewire/internal/cli"
	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/neuro"
)

type AssessCmd struct {
	Patient      string `arg:"" help:"Patient ID or name."`
	Meds         string `help:"Medication adherence since last visit (yes, no, na)." default:"yes"`
	Observations string `help:"Session observations." short:"o"`
	JSON         bool   `help:"Print the assessment as JSON." name:"json"`
}

func (c *AssessCmd) Run(ctx *cli.Context) error {
	p, err := cli.ResolvePatient(c.Patient)
	if err != nil {
		return err
	}
	meds, err := models.ParseMedsAdherence(c.Meds)
	if err != nil {
		return err
	}

	rec, plan, err := ctx.Dashboard.Assess(p.ID, meds, c.Observations)
	if err != nil {
		return err
	}

	if c.JSON {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode assessment: %w", err)
		}
		ctx.Println(string(data))
		return nil
	}

	snap, err := ctx.Dashboard.Snapshot(p.ID)
	if err != nil {
		return err
	}
	printBiometrics(ctx, snap.Latest)
	ctx.Println()
	ctx.Printf("%s\n", cli.FormatRisk(rec.RiskAssessment))
	for _, reason := range rec.Reasons {
		ctx.Printf("  - %s\n", reason)
	}
	if len(rec.Reasons) == 0 {
		ctx.Println("  ✓ All indicators look good.")
	}
	ctx.Println()
	printPlan(ctx, plan)
	return nil
}

func printBiometrics(ctx *cli.Context, r *models.BiometricReading) {
	if r == nil {
		ctx.Println("No biometric data for this patient. Please sync data.")
		return
	}
	ctx.Println("Latest biometrics:")
	ctx.Printf("  Resting HR  %.0f bpm\n", r.RestingHR)
	ctx.Printf("  HRV         %.0f ms\n", r.HRV)
	ctx.Printf("  Sleep       %.1f h\n", r.Sleep)
	ctx.Printf("  Activity    %.0f min\n", r.Activity)
}

func printPlan(ctx *cli.Context, plan models.HomeworkPlan) {
	ctx.Println("Suggested homework plan:")
	for _, slot := range models.Slots {
		ctx.Printf("  %-24s %-24s %d×/wk\n", slot.Label(), plan.Games[slot], plan.Frequencies[slot])
	}
	ctx.Printf("  Message: %s\n", plan.Note)
}

func printProgress(ctx *cli.Context, s neuro.Summary, window []models.EEGReading) {
	ctx.Printf("EEG trend (last %d sessions):\n", len(window))
	ctx.Println("  Session    FAA     TBR   Neuro-score")
	for i, r := range window {
		ctx.Printf("  %7d  %6.2f  %6.2f  %+8.2f\n", r.Session, r.FAA, r.TBR, s.Progress.Series[i])
	}
	ctx.Printf("Change vs. baseline: %+.2f SD (%s)\n", s.Progress.Delta, s.Class)
	ctx.Printf("Latest EEG: %s\n", s.Interpretation.Describe())
}
