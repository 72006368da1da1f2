package storagetest

import (
	"errors"
	"sort"

	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/storage"
)

// Fake is an in-memory storage.Provider for command and TUI tests. Setting
// Err makes every call fail with it; SaveErr fails only the history writes.
type Fake struct {
	Err     error
	SaveErr error

	Initialized bool
	Loaded      bool
	Closed      bool

	bio         []models.BiometricReading
	eeg         []models.EEGReading
	sync        *models.SyncInfo
	assessments []models.AssessmentRecord
	plans       map[string]models.HomeworkPlan
}

var _ storage.Provider = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{plans: make(map[string]models.HomeworkPlan)}
}

func (f *Fake) Init() error {
	f.Initialized = true
	return f.Err
}

func (f *Fake) Load() error {
	f.Loaded = true
	return f.Err
}

func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

func (f *Fake) GetConfigPath() string { return "memory" }

func (f *Fake) ReplaceReadings(bio []models.BiometricReading, eeg []models.EEGReading, info models.SyncInfo) error {
	if f.Err != nil {
		return f.Err
	}
	f.bio = append([]models.BiometricReading(nil), bio...)
	f.eeg = append([]models.EEGReading(nil), eeg...)
	f.sync = &info
	return nil
}

func (f *Fake) GetBiometrics(patientID string) ([]models.BiometricReading, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var out []models.BiometricReading
	for _, r := range f.bio {
		if patientID == "" || r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *Fake) GetEEG(patientID string) ([]models.EEGReading, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var out []models.EEGReading
	for _, r := range f.eeg {
		if patientID == "" || r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *Fake) GetLastSync() (models.SyncInfo, error) {
	if f.Err != nil {
		return models.SyncInfo{}, f.Err
	}
	if f.sync == nil {
		return models.SyncInfo{}, storage.ErrNeverSynced
	}
	return *f.sync, nil
}

func (f *Fake) SaveAssessment(rec models.AssessmentRecord) error {
	if f.Err != nil {
		return f.Err
	}
	if f.SaveErr != nil {
		return f.SaveErr
	}
	rec.Reasons = append([]string(nil), rec.Reasons...)
	f.assessments = append(f.assessments, rec)
	return nil
}

func (f *Fake) GetAssessments(patientID string, limit int) ([]models.AssessmentRecord, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var out []models.AssessmentRecord
	for _, rec := range f.assessments {
		if patientID == "" || rec.PatientID == patientID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AssessedAt.After(out[j].AssessedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Fake) SavePlan(plan models.HomeworkPlan) error {
	if f.Err != nil {
		return f.Err
	}
	if f.SaveErr != nil {
		return f.SaveErr
	}
	if plan.SentAt == nil {
		return errors.New("plan has not been sent")
	}
	f.plans[plan.ID] = plan.Clone()
	return nil
}

func (f *Fake) GetPlan(id string) (models.HomeworkPlan, error) {
	if f.Err != nil {
		return models.HomeworkPlan{}, f.Err
	}
	plan, ok := f.plans[id]
	if !ok {
		return models.HomeworkPlan{}, storage.ErrNotFound
	}
	return plan.Clone(), nil
}

func (f *Fake) GetPlans(patientID string) ([]models.HomeworkPlan, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var out []models.HomeworkPlan
	for _, plan := range f.plans {
		if patientID == "" || plan.PatientID == patientID {
			out = append(out, plan.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(*out[j].SentAt) })
	return out, nil
}
