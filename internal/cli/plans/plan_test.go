package plans

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rewiredtx/rewire/internal/cli"
	"github.com/rewiredtx/rewire/internal/config"
	"github.com/rewiredtx/rewire/internal/homework"
	"github.com/rewiredtx/rewire/internal/storage/storagetest"
	"github.com/rewiredtx/rewire/internal/validation"
)

const biometricCSV = `patient_id,date,resting_hr,hrv,sleep,activity
RW-001,2025-05-01,72,58,7.5,45
RW-002,2025-05-01,90,40,5,20
`

const eegCSV = `patient_id,faa,tbr
RW-001,-0.10,0.65
`

func setupContext(t *testing.T) (*cli.Context, *storagetest.Fake, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	bio := filepath.Join(dir, "bio.csv")
	eeg := filepath.Join(dir, "eeg.csv")
	if err := os.WriteFile(bio, []byte(biometricCSV), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(eeg, []byte(eegCSV), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := config.Load(dir, "")
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	store := storagetest.NewFake()
	ctx := cli.NewContext(store, settings, dir)
	if _, err := ctx.Dashboard.Sync(bio, eeg); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	var out bytes.Buffer
	ctx.Out = &out
	return ctx, store, &out
}

func TestPlanDefaultCmd(t *testing.T) {
	ctx, store, out := setupContext(t)

	if err := (&PlanDefaultCmd{Patient: "RW-002", Meds: "no"}).Run(ctx); err != nil {
		t.Fatalf("plan default failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"High risk", "Focus Trainer", "7×/wk", "Focus on consistency"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	// A preview records nothing.
	history, _ := store.GetAssessments("", 0)
	if len(history) != 0 {
		t.Errorf("expected no assessments, got %d", len(history))
	}
}

func TestPlanDefaultCmd_NoBiometrics(t *testing.T) {
	ctx, _, _ := setupContext(t)
	err := (&PlanDefaultCmd{Patient: "RW-003", Meds: "yes"}).Run(ctx)
	if !errors.Is(err, validation.ErrNoBiometrics) {
		t.Errorf("expected ErrNoBiometrics, got %v", err)
	}
}

func TestPlanSendCmd_Default(t *testing.T) {
	ctx, store, out := setupContext(t)

	cmd := &PlanSendCmd{Patient: "RW-002", Meds: "no", Yes: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("plan send failed: %v", err)
	}

	got := out.String()
	idx := strings.Index(got, "{")
	if idx < 0 {
		t.Fatalf("no JSON summary in output:\n%s", got)
	}
	var summary homework.Summary
	if err := json.Unmarshal([]byte(got[idx:]), &summary); err != nil {
		t.Fatalf("invalid summary: %v", err)
	}
	if summary.Patient != "Jamie Chen" || summary.Risk != "High" || summary.Games["Impulse Control Game"] != "5×/wk" {
		t.Errorf("unexpected summary: %+v", summary)
	}

	plans, _ := store.GetPlans("RW-002")
	if len(plans) != 1 || !plans[0].Submitted {
		t.Errorf("plan not archived: %+v", plans)
	}
}

func TestPlanListCmd(t *testing.T) {
	ctx, _, out := setupContext(t)

	if err := (&PlanListCmd{}).Run(ctx); err != nil {
		t.Fatalf("plan list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No plans sent yet.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	if err := (&PlanSendCmd{Patient: "RW-001", Meds: "yes", Yes: true}).Run(ctx); err != nil {
		t.Fatalf("plan send failed: %v", err)
	}
	out.Reset()
	if err := (&PlanListCmd{Patient: "Alex Rivera"}).Run(ctx); err != nil {
		t.Fatalf("plan list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Alex Rivera (RW-001)") || !strings.Contains(out.String(), "Cognitive Reframing") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	out.Reset()
	if err := (&PlanListCmd{Patient: "RW-002"}).Run(ctx); err != nil {
		t.Fatalf("plan list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No plans sent yet.") {
		t.Errorf("expected no plans for RW-002:\n%s", out.String())
	}
}
