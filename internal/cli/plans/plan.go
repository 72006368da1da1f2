package plans

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/rewiredtx/rewire/internal/cli"
	"github.com/rewiredtx/rewire/internal/homework"
	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/risk"
	"github.com/rewiredtx/rewire/internal/tui/forms"
	"github.com/rewiredtx/rewire/internal/validation"
)

type PlanCmd struct {
	Default PlanDefaultCmd `cmd:"" help:"Show the default homework plan for a patient."`
	Send    PlanSendCmd    `cmd:"" help:"Assess a patient, edit the plan and send it."`
	List    PlanListCmd    `cmd:"" help:"List sent homework plans."`
}

type PlanDefaultCmd struct {
	Patient string `arg:"" help:"Patient ID or name."`
	Meds    string `help:"Medication adherence since last visit (yes, no, na)." default:"yes"`
}

// Run previews the plan without recording an assessment.
func (c *PlanDefaultCmd) Run(ctx *cli.Context) error {
	p, err := cli.ResolvePatient(c.Patient)
	if err != nil {
		return err
	}
	meds, err := models.ParseMedsAdherence(c.Meds)
	if err != nil {
		return err
	}
	snap, err := ctx.Dashboard.Snapshot(p.ID)
	if err != nil {
		return err
	}
	if snap.Latest == nil {
		return validation.ErrNoBiometrics
	}

	a := risk.Score(*snap.Latest, meds.Adherent())
	plan := homework.DefaultPlan(a.Level, p.Diagnosis)
	plan.Note = ctx.Dashboard.Settings().Plan.DefaultNote

	ctx.Printf("%s · %s · %s\n", p, p.Diagnosis, cli.FormatRisk(a))
	printPlan(ctx, plan)
	return nil
}

type PlanSendCmd struct {
	Patient      string `arg:"" help:"Patient ID or name."`
	Meds         string `help:"Medication adherence since last visit (yes, no, na)." default:"yes"`
	Observations string `help:"Session observations." short:"o"`
	Yes          bool   `help:"Send the default plan without editing." short:"y"`
}

// errCancelled is returned when the therapist backs out of the form.
var errCancelled = errors.New("plan not sent")

func (c *PlanSendCmd) Run(ctx *cli.Context) error {
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
	ctx.Printf("%s · %s\n", p, cli.FormatRisk(rec.RiskAssessment))

	if !c.Yes {
		plan, err = editPlan(p, plan)
		if err != nil {
			if errors.Is(err, errCancelled) {
				ctx.Println("Plan not sent.")
				return nil
			}
			return err
		}
	}

	sent, summary, err := ctx.Dashboard.SendPlan(p.ID, plan)
	if err != nil {
		return err
	}
	out, err := summary.JSON()
	if err != nil {
		return err
	}
	ctx.Printf("✓ Plan sent to %s (%s)\n", p.Name, sent.ID)
	ctx.Println(out)
	return nil
}

func editPlan(p models.Patient, plan models.HomeworkPlan) (models.HomeworkPlan, error) {
	fm := forms.NewPlanFormModel(p.Diagnosis, plan)
	if err := forms.NewPlanForm(fm).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return models.HomeworkPlan{}, errCancelled
		}
		return models.HomeworkPlan{}, fmt.Errorf("plan form failed: %w", err)
	}
	edited := fm.Apply(plan)

	confirmed := true
	if err := forms.NewConfirmForm(fmt.Sprintf("Send this plan to %s?", p.Name), &confirmed).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return models.HomeworkPlan{}, errCancelled
		}
		return models.HomeworkPlan{}, err
	}
	if !confirmed {
		return models.HomeworkPlan{}, errCancelled
	}
	return edited, nil
}

type PlanListCmd struct {
	Patient string `arg:"" optional:"" help:"Patient ID or name (all patients when omitted)."`
}

func (c *PlanListCmd) Run(ctx *cli.Context) error {
	patientID := ""
	if c.Patient != "" {
		p, err := cli.ResolvePatient(c.Patient)
		if err != nil {
			return err
		}
		patientID = p.ID
	}

	plans, err := ctx.Store.GetPlans(patientID)
	if err != nil {
		return fmt.Errorf("failed to get plans: %w", err)
	}
	if len(plans) == 0 {
		ctx.Println("No plans sent yet.")
		return nil
	}

	for _, plan := range plans {
		name := plan.PatientID
		if p, ok := models.FindPatient(plan.PatientID); ok {
			name = p.String()
		}
		ctx.Printf("%s  %s  %s %s\n", plan.SentAt.Local().Format("2006-01-02 15:04"), name, plan.RiskLevel.Icon(), plan.RiskLevel)
		for _, slot := range models.Slots {
			ctx.Printf("    %-24s %s\n", plan.Games[slot], homework.FormatFrequency(plan.Frequencies[slot]))
		}
		if plan.Note != "" {
			ctx.Printf("    \"%s\"\n", plan.Note)
		}
	}
	return nil
}

func printPlan(ctx *cli.Context, plan models.HomeworkPlan) {
	for _, slot := range models.Slots {
		ctx.Printf("  %-24s %-24s %s\n", slot.Label(), plan.Games[slot], homework.FormatFrequency(plan.Frequencies[slot]))
	}
	ctx.Printf("  Message: %s\n", plan.Note)
}
