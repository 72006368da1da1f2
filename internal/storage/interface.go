package storage

import (
	"errors"

	"github.com/rewiredtx/rewire/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("not found")
	// ErrNeverSynced is returned when no data sync has been recorded yet
	ErrNeverSynced = errors.New("data has never been synced")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	// Readings. A sync replaces both tables wholesale and records SyncInfo.
	ReplaceReadings(bio []models.BiometricReading, eeg []models.EEGReading, info models.SyncInfo) error
	// GetBiometrics and GetEEG return rows in import order; an empty
	// patientID returns every patient.
	GetBiometrics(patientID string) ([]models.BiometricReading, error)
	GetEEG(patientID string) ([]models.EEGReading, error)
	GetLastSync() (models.SyncInfo, error)

	// Assessments
	SaveAssessment(models.AssessmentRecord) error
	GetAssessments(patientID string, limit int) ([]models.AssessmentRecord, error)

	// Sent homework plans
	SavePlan(models.HomeworkPlan) error
	GetPlan(id string) (models.HomeworkPlan, error)
	// GetPlans returns sent plans newest first; an empty patientID returns all.
	GetPlans(patientID string) ([]models.HomeworkPlan, error)
}
