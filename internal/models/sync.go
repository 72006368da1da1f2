package models

import "time"

// SyncInfo records the last successful data sync.
type SyncInfo struct {
	SyncedAt        time.Time `json:"synced_at"`
	BiometricRows   int       `json:"biometric_rows"`
	EEGRows         int       `json:"eeg_rows"`
	BiometricSource string    `json:"biometric_source"`
	EEGSource       string    `json:"eeg_source"`
}
