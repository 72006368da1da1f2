package validation

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rewiredtx/rewire/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestLatestBiometric(t *testing.T) {
	rows := []models.BiometricReading{
		{PatientID: "RW-001", Date: day("2025-03-01"), Sleep: 7},
		{PatientID: "RW-002", Date: day("2025-03-05"), Sleep: 4},
		{PatientID: "RW-001", Date: day("2025-03-03"), Sleep: 5},
		{PatientID: "RW-001", Date: day("2025-03-02"), Sleep: 8},
	}

	got, err := LatestBiometric(rows, "RW-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Sleep != 5 {
		t.Errorf("expected the 2025-03-03 row, got %+v", got)
	}
}

func TestLatestBiometric_TieTakesLaterRow(t *testing.T) {
	rows := []models.BiometricReading{
		{PatientID: "RW-003", Date: day("2025-03-04"), HRV: 40},
		{PatientID: "RW-003", Date: day("2025-03-04"), HRV: 60},
	}
	got, err := LatestBiometric(rows, "RW-003")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HRV != 60 {
		t.Errorf("expected later row on date tie, got HRV %v", got.HRV)
	}
}

func TestLatestBiometric_NoRows(t *testing.T) {
	rows := []models.BiometricReading{{PatientID: "RW-001", Date: day("2025-03-01")}}
	if _, err := LatestBiometric(rows, "RW-002"); !errors.Is(err, ErrNoBiometrics) {
		t.Errorf("expected ErrNoBiometrics, got %v", err)
	}
	if _, err := LatestBiometric(nil, "RW-001"); !errors.Is(err, ErrNoBiometrics) {
		t.Errorf("expected ErrNoBiometrics for empty input, got %v", err)
	}
}

func TestEEGWindow(t *testing.T) {
	var rows []models.EEGReading
	for i := 1; i <= 6; i++ {
		rows = append(rows, models.EEGReading{PatientID: "RW-001", Session: i, FAA: float64(i)})
		rows = append(rows, models.EEGReading{PatientID: "RW-002", Session: i, FAA: -float64(i)})
	}

	w := EEGWindow(rows, "RW-001", 4)
	if len(w) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(w))
	}
	for i, r := range w {
		if r.PatientID != "RW-001" || r.FAA != float64(i+3) {
			t.Errorf("row %d: unexpected %+v", i, r)
		}
	}

	if got := EEGWindow(rows, "RW-003", 4); len(got) != 0 {
		t.Errorf("expected empty window for patient without sessions, got %d", len(got))
	}
	if got := EEGWindow(rows, "RW-002", 0); len(got) != 4 {
		t.Errorf("non-positive size should use default window, got %d", len(got))
	}
}

func TestValidateBiometrics(t *testing.T) {
	v := New(models.Roster)
	rows := []models.BiometricReading{
		{PatientID: "RW-001", Date: day("2025-03-01"), RestingHR: 70, HRV: 55, Sleep: 7, Activity: 40},
		{PatientID: "RW-999", Date: day("2025-03-01"), RestingHR: 70, HRV: 55, Sleep: 7, Activity: 40},
		{PatientID: "RW-002", RestingHR: math.NaN(), HRV: -1, Sleep: 7, Activity: 40},
	}

	result := v.ValidateBiometrics(rows)
	want := map[IssueType]int{IssueUnknownPatient: 1, IssueMissingDate: 1, IssueNonFinite: 1, IssueNegativeValue: 1}
	got := map[IssueType]int{}
	for _, issue := range result.Issues {
		got[issue.Type]++
		if issue.Row == 1 {
			t.Errorf("valid row reported: %+v", issue)
		}
	}
	for k, n := range want {
		if got[k] != n {
			t.Errorf("%s: got %d issues, want %d", k, got[k], n)
		}
	}
	if !strings.Contains(result.FormatReport(), "biometric row 2") {
		t.Errorf("report missing row reference:\n%s", result.FormatReport())
	}
}

func TestValidateEEG(t *testing.T) {
	v := New(models.Roster)
	clean := v.ValidateEEG([]models.EEGReading{{PatientID: "RW-003", FAA: -0.4, TBR: 0.8}})
	if clean.HasIssues() {
		t.Errorf("negative FAA is valid, got %s", clean.FormatReport())
	}
	if clean.FormatReport() != "No data issues detected." {
		t.Errorf("unexpected clean report: %q", clean.FormatReport())
	}

	bad := v.ValidateEEG([]models.EEGReading{
		{PatientID: "RW-003", FAA: math.Inf(1), TBR: -0.1},
	})
	if len(bad.Issues) != 2 {
		t.Errorf("expected 2 issues, got %+v", bad.Issues)
	}
}

func TestFiniteRows(t *testing.T) {
	bio := []models.BiometricReading{
		{PatientID: "RW-001", RestingHR: 70, HRV: 50, Sleep: 7, Activity: 40},
		{PatientID: "RW-001", RestingHR: math.NaN(), HRV: 50, Sleep: 7, Activity: 40},
		{PatientID: "RW-002", RestingHR: 80, HRV: 50, Sleep: math.Inf(-1), Activity: 40},
		{PatientID: "RW-003", RestingHR: 80, HRV: 50, Sleep: 7, Activity: math.Inf(1)},
	}
	eeg := []models.EEGReading{
		{PatientID: "RW-001", FAA: -0.1, TBR: 0.6},
		{PatientID: "RW-001", FAA: math.NaN(), TBR: 0.6},
		{PatientID: "RW-002", FAA: 0.1, TBR: math.Inf(1)},
	}

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"biometric", len(FiniteBiometrics(bio)), 1},
		{"eeg", len(FiniteEEG(eeg)), 1},
		{"empty", len(FiniteBiometrics(nil)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("kept %d rows, want %d", tt.got, tt.want)
			}
		})
	}

	if kept := FiniteBiometrics(bio); kept[0].RestingHR != 70 {
		t.Errorf("wrong row kept: %+v", kept[0])
	}
}
