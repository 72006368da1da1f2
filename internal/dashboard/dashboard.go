// Package dashboard runs a clinic visit on top of the store: syncing the
// exported tables, assessing a patient, reviewing EEG progress and sending
// the homework plan. The CLI commands and the TUI both drive it.
package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rewiredtx/rewire/internal/config"
	"github.com/rewiredtx/rewire/internal/homework"
	"github.com/rewiredtx/rewire/internal/loader"
	"github.com/rewiredtx/rewire/internal/logger"
	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/neuro"
	"github.com/rewiredtx/rewire/internal/report"
	"github.com/rewiredtx/rewire/internal/risk"
	"github.com/rewiredtx/rewire/internal/session"
	"github.com/rewiredtx/rewire/internal/storage"
	"github.com/rewiredtx/rewire/internal/validation"
)

// SettingsSource supplies the current settings. *config.Manager satisfies it.
type SettingsSource interface {
	Settings() config.Settings
}

type Service struct {
	store     storage.Provider
	settings  SettingsSource
	sessions  *session.Store
	validator *validation.Validator
	now       func() time.Time
}

func New(store storage.Provider, settings SettingsSource) *Service {
	return &Service{
		store:     store,
		settings:  settings,
		sessions:  session.NewStore(models.Roster, settings.Settings().Plan.DefaultNote),
		validator: validation.New(models.Roster),
		now:       time.Now,
	}
}

// Sessions exposes the per-patient visit state.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

func (s *Service) Settings() config.Settings {
	return s.settings.Settings()
}

// SyncResult reports what a sync imported and any data issues found.
type SyncResult struct {
	Info      models.SyncInfo
	Biometric validation.ValidationResult
	EEG       validation.ValidationResult
	// Skipped counts rows left out because a measurement was NaN or ±Inf.
	Skipped int
}

func (r SyncResult) HasIssues() bool {
	return r.Biometric.HasIssues() || r.EEG.HasIssues()
}

// Sync loads both exported tables and replaces the stored readings. Empty
// paths fall back to the configured sources. Issues are reported but do not
// block the import; rows with non-finite measurements are skipped.
func (s *Service) Sync(biometricPath, eegPath string) (SyncResult, error) {
	cfg := s.Settings()
	if biometricPath == "" {
		biometricPath = cfg.Data.BiometricCSV
	}
	if eegPath == "" {
		eegPath = cfg.Data.EEGCSV
	}

	bio, err := loader.LoadBiometrics(biometricPath)
	if err != nil {
		return SyncResult{}, err
	}
	eeg, err := loader.LoadEEG(eegPath)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{
		Biometric: s.validator.ValidateBiometrics(bio),
		EEG:       s.validator.ValidateEEG(eeg),
	}
	keptBio := validation.FiniteBiometrics(bio)
	keptEEG := validation.FiniteEEG(eeg)
	result.Skipped = len(bio) - len(keptBio) + len(eeg) - len(keptEEG)
	result.Info = models.SyncInfo{
		SyncedAt:        s.now(),
		BiometricRows:   len(keptBio),
		EEGRows:         len(keptEEG),
		BiometricSource: biometricPath,
		EEGSource:       eegPath,
	}
	if err := s.store.ReplaceReadings(keptBio, keptEEG, result.Info); err != nil {
		return SyncResult{}, fmt.Errorf("failed to store readings: %w", err)
	}

	logger.Info("Data synced", "biometric_rows", len(keptBio), "eeg_rows", len(keptEEG),
		"skipped", result.Skipped, "issues", len(result.Biometric.Issues)+len(result.EEG.Issues))
	return result, nil
}

// Snapshot is what the dashboard shows for a patient before the visit form.
type Snapshot struct {
	Patient models.Patient
	// Latest is nil when the patient has no biometric rows.
	Latest *models.BiometricReading
	// EEG is the trend window; Summary is nil when it is empty.
	EEG      []models.EEGReading
	Summary  *neuro.Summary
	LastSync *models.SyncInfo
}

func (s *Service) patient(patientID string) (models.Patient, error) {
	p, ok := models.FindPatient(patientID)
	if !ok {
		return models.Patient{}, fmt.Errorf("%s: %w", patientID, session.ErrUnknownPatient)
	}
	return p, nil
}

// Snapshot gathers the latest biometric row and EEG progress for a patient.
func (s *Service) Snapshot(patientID string) (Snapshot, error) {
	p, err := s.patient(patientID)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{Patient: p}

	info, err := s.store.GetLastSync()
	switch {
	case err == nil:
		snap.LastSync = &info
	case !errors.Is(err, storage.ErrNeverSynced):
		return Snapshot{}, err
	}

	latest, err := s.latestBiometric(p.ID)
	switch {
	case err == nil:
		snap.Latest = &latest
	case !errors.Is(err, validation.ErrNoBiometrics):
		return Snapshot{}, err
	}

	summary, window, err := s.Progress(p.ID)
	switch {
	case err == nil:
		snap.Summary = &summary
		snap.EEG = window
	case !errors.Is(err, neuro.ErrEmptyWindow):
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Service) latestBiometric(patientID string) (models.BiometricReading, error) {
	rows, err := s.store.GetBiometrics(patientID)
	if err != nil {
		return models.BiometricReading{}, fmt.Errorf("failed to read biometrics: %w", err)
	}
	return validation.LatestBiometric(rows, patientID)
}

// Progress normalizes the patient's most recent EEG sessions. It returns
// neuro.ErrEmptyWindow when the patient has none.
func (s *Service) Progress(patientID string) (neuro.Summary, []models.EEGReading, error) {
	p, err := s.patient(patientID)
	if err != nil {
		return neuro.Summary{}, nil, err
	}
	rows, err := s.store.GetEEG(p.ID)
	if err != nil {
		return neuro.Summary{}, nil, fmt.Errorf("failed to read EEG sessions: %w", err)
	}
	size := s.Settings().EEG.WindowSize
	window := validation.EEGWindow(rows, p.ID, size)
	summary, err := neuro.Summarize(window, size)
	if err != nil {
		return neuro.Summary{}, nil, err
	}
	return summary, window, nil
}

// Assess scores the patient's latest biometric row with the therapist's
// medication answer, records it in the visit session and the assessment
// history, and returns the record with the patient's working plan.
func (s *Service) Assess(patientID string, meds models.MedsAdherence, observations string) (models.AssessmentRecord, models.HomeworkPlan, error) {
	p, err := s.patient(patientID)
	if err != nil {
		return models.AssessmentRecord{}, models.HomeworkPlan{}, err
	}
	latest, err := s.latestBiometric(p.ID)
	if err != nil {
		return models.AssessmentRecord{}, models.HomeworkPlan{}, err
	}

	assessment := risk.Score(latest, meds.Adherent())
	rec := models.AssessmentRecord{
		ID:             uuid.New().String(),
		PatientID:      p.ID,
		AssessedAt:     s.now(),
		Meds:           meds,
		Observations:   observations,
		RiskAssessment: assessment,
	}
	// History first: the visit only moves on once the record is stored.
	if err := s.store.SaveAssessment(rec); err != nil {
		return models.AssessmentRecord{}, models.HomeworkPlan{}, fmt.Errorf("failed to save assessment: %w", err)
	}

	if err := s.sessions.Select(p.ID); err != nil {
		return models.AssessmentRecord{}, models.HomeworkPlan{}, err
	}
	plan, err := s.sessions.RecordAssessment(p.ID, meds, observations, assessment)
	if err != nil {
		return models.AssessmentRecord{}, models.HomeworkPlan{}, err
	}

	logger.Info("Patient assessed", "patient", p.ID, "score", assessment.Score, "level", assessment.Level)
	return rec, plan, nil
}

// SendPlan applies the therapist's edits, submits the plan and archives it.
// The returned summary is what gets sent to the patient.
func (s *Service) SendPlan(patientID string, edited models.HomeworkPlan) (models.HomeworkPlan, homework.Summary, error) {
	p, err := s.patient(patientID)
	if err != nil {
		return models.HomeworkPlan{}, homework.Summary{}, err
	}
	if err := s.sessions.UpdatePlan(p.ID, edited); err != nil {
		return models.HomeworkPlan{}, homework.Summary{}, err
	}
	// Edits survive a failed archive; the sent mark does not.
	restore := s.sessions.Checkpoint(p.ID)
	sent, err := s.sessions.MarkSent(p.ID)
	if err != nil {
		return models.HomeworkPlan{}, homework.Summary{}, err
	}
	if err := s.store.SavePlan(sent); err != nil {
		restore()
		return models.HomeworkPlan{}, homework.Summary{}, fmt.Errorf("failed to archive plan: %w", err)
	}

	logger.Info("Homework plan sent", "patient", p.ID, "plan", sent.ID, "risk", sent.RiskLevel)
	return sent, homework.NewSummary(p, sent), nil
}

// Report writes the patient's HTML progress report. An empty dir uses the
// configured output directory.
func (s *Service) Report(patientID, dir string) (string, error) {
	snap, err := s.Snapshot(patientID)
	if err != nil {
		return "", err
	}
	bio, err := s.store.GetBiometrics(snap.Patient.ID)
	if err != nil {
		return "", fmt.Errorf("failed to read biometrics: %w", err)
	}

	in := report.Input{
		Patient:     snap.Patient,
		Biometrics:  bio,
		EEG:         snap.EEG,
		Summary:     snap.Summary,
		GeneratedAt: s.now(),
	}
	if ps, ok := s.sessions.Get(snap.Patient.ID); ok && ps.Assessment != nil {
		in.Assessment = ps.Assessment
	} else if history, err := s.store.GetAssessments(snap.Patient.ID, 1); err == nil && len(history) > 0 {
		in.Assessment = &history[0].RiskAssessment
	}

	if dir == "" {
		dir = s.Settings().Report.OutputDir
	}
	path, err := report.WriteFile(dir, in)
	if err != nil {
		return "", err
	}
	logger.Info("Report written", "patient", snap.Patient.ID, "path", path)
	return path, nil
}
