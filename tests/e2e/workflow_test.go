package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const biometricCSV = `patient_id,date,resting_hr,hrv,sleep,activity
RW-001,2025-05-01,72,58,7.5,45
RW-002,2025-05-01,90,40,5,20
RW-003,2025-05-01,80,45,6.5,25
`

const eegCSV = `patient_id,faa,tbr
RW-001,-0.10,0.65
RW-001,-0.15,0.55
RW-001,-0.25,0.50
RW-002,0.10,0.40
RW-002,0.05,0.45
`

func TestEndToEndWorkflow(t *testing.T) {
	// 1. Setup Environment
	// Allow overriding bin dir via env var, default to ../../bin (relative to tests/e2e)
	binDir := os.Getenv("REWIRE_BIN_DIR")
	if binDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			t.Fatalf("Failed to get cwd: %v", err)
		}
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)

	cliPath := filepath.Join(binDir, "rewire")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s; build it with 'go build -o bin/rewire ./cmd/rewire'", cliPath)
	}

	// Create temp home for isolation
	tempDir := t.TempDir()
	var env []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "HOME=") && !strings.HasPrefix(e, "REWIRE_") {
			env = append(env, e)
		}
	}
	env = append(env, fmt.Sprintf("HOME=%s", tempDir))

	dataDir := filepath.Join(tempDir, "rewire")
	dbPath := filepath.Join(dataDir, "rewire.db")
	run := func(args ...string) string {
		t.Helper()
		return runCmd(t, cliPath, env, append([]string{"--config", dbPath}, args...)...)
	}

	// 2. Initialize storage and settings
	run("init")
	if _, err := os.Stat(filepath.Join(dataDir, "config.yaml")); err != nil {
		t.Fatalf("init did not write default settings: %v", err)
	}

	// 3. Drop the exports where the default settings look for them
	writeFile(t, filepath.Join(dataDir, "latest_biometric.csv"), biometricCSV)
	writeFile(t, filepath.Join(dataDir, "rewire_clean_eeg_sample.csv"), eegCSV)
	out := run("sync")
	if !strings.Contains(out, "Synced 3 biometric rows") || !strings.Contains(out, "Synced 5 EEG rows") {
		t.Fatalf("unexpected sync output:\n%s", out)
	}

	// 4. Assess and review progress
	out = run("assess", "RW-002", "--meds", "no")
	if !strings.Contains(out, "High risk") || !strings.Contains(out, "Score 100/100") {
		t.Errorf("unexpected assessment:\n%s", out)
	}
	out = run("progress", "RW-001")
	if !strings.Contains(out, "improvement") {
		t.Errorf("expected an improving EEG trend:\n%s", out)
	}

	// 5. Send the default plan and check it was archived
	out = run("plan", "send", "RW-002", "--meds", "no", "-y")
	if !strings.Contains(out, `"Patient": "Jamie Chen"`) {
		t.Errorf("expected the sent summary:\n%s", out)
	}
	out = run("plan", "list", "RW-002")
	if !strings.Contains(out, "RW-002") {
		t.Errorf("sent plan missing from history:\n%s", out)
	}

	// 6. Report, backups and diagnostics
	reportDir := filepath.Join(tempDir, "reports")
	run("report", "RW-001", "--out", reportDir)
	reports, _ := filepath.Glob(filepath.Join(reportDir, "RW-001-*.html"))
	if len(reports) != 1 {
		t.Errorf("expected one report, found %d", len(reports))
	}

	run("backup", "create")
	out = run("backup", "list")
	if !strings.Contains(out, "rewire-") {
		t.Errorf("expected a backup listing:\n%s", out)
	}

	run("doctor")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}
