package visits

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
	"github.com/rewiredtx/rewire/internal/constants"
	"github.com/rewiredtx/rewire/internal/loader"
	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/session"
	"github.com/rewiredtx/rewire/internal/storage/storagetest"
)

const biometricCSV = `patient_id,date,resting_hr,hrv,sleep,activity
RW-001,2025-05-01,72,58,7.5,45
RW-002,2025-05-01,90,40,5,20
RW-010,2025-05-01,70,60,8,60
`

const eegCSV = `patient_id,faa,tbr
RW-001,-0.10,0.65
RW-001,-0.15,0.55
RW-001,-0.25,0.50
`

func setupContext(t *testing.T, withData bool) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	if withData {
		files := map[string]string{
			constants.DefaultBiometricCSV: biometricCSV,
			constants.DefaultEEGCSV:       eegCSV,
		}
		for name, content := range files {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
				t.Fatalf("failed to write %s: %v", name, err)
			}
		}
	}

	settings, err := config.Load(dir, "")
	if err != nil {
		t.Fatalf("failed to load settings: %v", err)
	}
	ctx := cli.NewContext(storagetest.NewFake(), settings, dir)
	var out bytes.Buffer
	ctx.Out = &out
	return ctx, &out, dir
}

func syncData(t *testing.T, ctx *cli.Context) {
	t.Helper()
	if err := (&SyncCmd{}).Run(ctx); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
}

func TestSyncCmd(t *testing.T) {
	ctx, out, _ := setupContext(t, true)
	syncData(t, ctx)

	got := out.String()
	if !strings.Contains(got, "Synced 3 biometric rows") || !strings.Contains(got, "Synced 3 EEG rows") {
		t.Errorf("unexpected output:\n%s", got)
	}
	if !strings.Contains(got, "RW-010") {
		t.Errorf("expected the unknown patient to be reported:\n%s", got)
	}
}

func TestSyncCmd_MissingFiles(t *testing.T) {
	ctx, _, _ := setupContext(t, false)
	err := (&SyncCmd{}).Run(ctx)
	if !errors.Is(err, loader.ErrSourceMissing) {
		t.Errorf("expected ErrSourceMissing, got %v", err)
	}
}

func TestAssessCmd_JSON(t *testing.T) {
	ctx, out, _ := setupContext(t, true)
	syncData(t, ctx)
	out.Reset()

	cmd := &AssessCmd{Patient: "Jamie Chen", Meds: "no", JSON: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("assess failed: %v", err)
	}

	var rec models.AssessmentRecord
	if err := json.Unmarshal(out.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if rec.PatientID != "RW-002" || rec.Score != 100 || rec.Level != models.RiskHigh || len(rec.Reasons) != 5 {
		t.Errorf("unexpected assessment: %+v", rec)
	}
}

func TestAssessCmd_Text(t *testing.T) {
	ctx, out, _ := setupContext(t, true)
	syncData(t, ctx)
	out.Reset()

	if err := (&AssessCmd{Patient: "rw-001", Meds: "na"}).Run(ctx); err != nil {
		t.Fatalf("assess failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"Low risk · Score 0/100", "All indicators look good", "Cognitive Reframing"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestAssessCmd_Errors(t *testing.T) {
	ctx, _, _ := setupContext(t, true)
	syncData(t, ctx)

	tests := []struct {
		name string
		cmd  AssessCmd
		want error
	}{
		{"unknown patient", AssessCmd{Patient: "RW-404", Meds: "yes"}, session.ErrUnknownPatient},
		{"invalid meds", AssessCmd{Patient: "RW-001", Meds: "sometimes"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(ctx)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPatientsCmd(t *testing.T) {
	ctx, out, _ := setupContext(t, true)
	syncData(t, ctx)
	if err := (&AssessCmd{Patient: "RW-002", Meds: "no"}).Run(ctx); err != nil {
		t.Fatalf("assess failed: %v", err)
	}
	out.Reset()

	if err := (&PatientsCmd{}).Run(ctx); err != nil {
		t.Fatalf("patients failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Taylor Singh") || !strings.Contains(got, "not assessed") {
		t.Errorf("roster missing:\n%s", got)
	}
	if !strings.Contains(got, "🔴 High") {
		t.Errorf("expected the high-risk assessment to be listed:\n%s", got)
	}
}

func TestProgressCmd(t *testing.T) {
	ctx, out, _ := setupContext(t, true)
	syncData(t, ctx)
	out.Reset()

	if err := (&ProgressCmd{Patient: "RW-001"}).Run(ctx); err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if !strings.Contains(out.String(), "(improvement)") {
		t.Errorf("expected an improvement:\n%s", out.String())
	}

	out.Reset()
	if err := (&ProgressCmd{Patient: "RW-003"}).Run(ctx); err != nil {
		t.Fatalf("progress without EEG should not fail: %v", err)
	}
	if !strings.Contains(out.String(), "No EEG sessions") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestReportCmd(t *testing.T) {
	ctx, out, dir := setupContext(t, true)
	syncData(t, ctx)

	outDir := filepath.Join(dir, "out")
	if err := (&ReportCmd{Patient: "RW-001", Out: outDir}).Run(ctx); err != nil {
		t.Fatalf("report failed: %v", err)
	}
	entries, err := os.ReadDir(outDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one report in %s: %v", outDir, err)
	}
	if !strings.Contains(out.String(), "Report written") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
