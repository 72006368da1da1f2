package models

import "time"

// BiometricReading is one day of wearable data for a patient.
type BiometricReading struct {
	PatientID string    `json:"patient_id"`
	Date      time.Time `json:"date"`
	RestingHR float64   `json:"resting_hr"` // bpm
	HRV       float64   `json:"hrv"`        // ms
	Sleep     float64   `json:"sleep"`      // hours
	Activity  float64   `json:"activity"`   // minutes
}

// EEGReading is one EEG session. Session is the insertion ordinal within the
// source table, so ordering by it reproduces chronological order.
type EEGReading struct {
	PatientID string  `json:"patient_id"`
	Session   int     `json:"session"`
	FAA       float64 `json:"faa"`
	TBR       float64 `json:"tbr"`
}
