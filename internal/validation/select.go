package validation

import (
	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/neuro"
)

// LatestBiometric returns the most recent row for the patient by date. When
// several rows share the latest date, the one appearing last wins.
func LatestBiometric(rows []models.BiometricReading, patientID string) (models.BiometricReading, error) {
	var (
		latest models.BiometricReading
		found  bool
	)
	for _, r := range rows {
		if r.PatientID != patientID {
			continue
		}
		if !found || !r.Date.Before(latest.Date) {
			latest = r
			found = true
		}
	}
	if !found {
		return models.BiometricReading{}, ErrNoBiometrics
	}
	return latest, nil
}

// PatientEEG returns all EEG rows for the patient in insertion order.
func PatientEEG(rows []models.EEGReading, patientID string) []models.EEGReading {
	var out []models.EEGReading
	for _, r := range rows {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out
}

// EEGWindow returns the last n EEG rows for the patient in chronological
// order. A non-positive n selects the default window.
func EEGWindow(rows []models.EEGReading, patientID string, n int) []models.EEGReading {
	return neuro.Window(PatientEEG(rows, patientID), n)
}
