package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/rewiredtx/rewire/internal/models"
)

// ErrNoBiometrics means no biometric row exists for the requested patient.
var ErrNoBiometrics = errors.New("no biometric data for this patient, please sync data")

// IssueType represents the kind of problem found in an imported row
type IssueType string

const (
	IssueUnknownPatient IssueType = "unknown_patient"
	IssueNonFinite      IssueType = "non_finite_value"
	IssueMissingDate    IssueType = "missing_date"
	IssueNegativeValue  IssueType = "negative_value"
)

// Issue represents one schema problem in a source row
type Issue struct {
	Type        IssueType
	Description string
	Source      string // "biometric" or "eeg"
	Row         int    // 1-based data row, header excluded
	PatientID   string
}

// ValidationResult contains all detected issues
type ValidationResult struct {
	Issues []Issue
}

// HasIssues returns true if there are any issues
func (vr *ValidationResult) HasIssues() bool {
	return len(vr.Issues) > 0
}

// FormatReport returns a human-readable report of all issues
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasIssues() {
		return "No data issues detected."
	}

	report := "Data issues detected:\n"
	for _, issue := range vr.Issues {
		report += fmt.Sprintf("- %s row %d: %s\n", issue.Source, issue.Row, issue.Description)
	}
	return report
}

// Validator checks imported rows against the roster and value constraints
type Validator struct {
	roster map[string]bool
}

// New creates a Validator for the given roster
func New(roster []models.Patient) *Validator {
	v := &Validator{roster: make(map[string]bool, len(roster))}
	for _, p := range roster {
		v.roster[p.ID] = true
	}
	return v
}

// ValidateBiometrics checks biometric rows. Out-of-range but finite values
// are accepted; only negative measurements are flagged.
func (v *Validator) ValidateBiometrics(rows []models.BiometricReading) ValidationResult {
	var result ValidationResult
	for i, r := range rows {
		add := func(t IssueType, desc string) {
			result.Issues = append(result.Issues, Issue{Type: t, Description: desc, Source: "biometric", Row: i + 1, PatientID: r.PatientID})
		}
		if !v.roster[r.PatientID] {
			add(IssueUnknownPatient, fmt.Sprintf("patient %q is not on the roster", r.PatientID))
		}
		if r.Date.IsZero() {
			add(IssueMissingDate, "date is missing")
		}
		fields := []struct {
			name  string
			value float64
		}{
			{"resting_hr", r.RestingHR},
			{"hrv", r.HRV},
			{"sleep", r.Sleep},
			{"activity", r.Activity},
		}
		for _, f := range fields {
			switch {
			case !finite(f.value):
				add(IssueNonFinite, fmt.Sprintf("%s is not a finite number; row skipped", f.name))
			case f.value < 0:
				add(IssueNegativeValue, fmt.Sprintf("%s is negative (%g)", f.name, f.value))
			}
		}
	}
	return result
}

// ValidateEEG checks EEG rows. FAA is signed, so only finiteness and the
// roster are checked for it.
func (v *Validator) ValidateEEG(rows []models.EEGReading) ValidationResult {
	var result ValidationResult
	for i, r := range rows {
		add := func(t IssueType, desc string) {
			result.Issues = append(result.Issues, Issue{Type: t, Description: desc, Source: "eeg", Row: i + 1, PatientID: r.PatientID})
		}
		if !v.roster[r.PatientID] {
			add(IssueUnknownPatient, fmt.Sprintf("patient %q is not on the roster", r.PatientID))
		}
		if !finite(r.FAA) {
			add(IssueNonFinite, "faa is not a finite number; row skipped")
		}
		switch {
		case !finite(r.TBR):
			add(IssueNonFinite, "tbr is not a finite number; row skipped")
		case r.TBR < 0:
			add(IssueNegativeValue, fmt.Sprintf("tbr is negative (%g)", r.TBR))
		}
	}
	return result
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FiniteBiometrics returns the rows whose measurements are all finite. The
// storage backends cannot hold NaN or ±Inf.
func FiniteBiometrics(rows []models.BiometricReading) []models.BiometricReading {
	out := make([]models.BiometricReading, 0, len(rows))
	for _, r := range rows {
		if finite(r.RestingHR) && finite(r.HRV) && finite(r.Sleep) && finite(r.Activity) {
			out = append(out, r)
		}
	}
	return out
}

// FiniteEEG returns the rows with finite FAA and TBR.
func FiniteEEG(rows []models.EEGReading) []models.EEGReading {
	out := make([]models.EEGReading, 0, len(rows))
	for _, r := range rows {
		if finite(r.FAA) && finite(r.TBR) {
			out = append(out, r)
		}
	}
	return out
}
