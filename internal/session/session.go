// Package session keeps per-patient dashboard state for the lifetime of the
// process: the active patient, each patient's assessment step and the
// homework plan the therapist is editing.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rewiredtx/rewire/internal/homework"
	"github.com/rewiredtx/rewire/internal/models"
)

type State int

const (
	StateNoAssessment State = iota
	StateAssessed
	StatePlanSent
)

func (s State) String() string {
	switch s {
	case StateAssessed:
		return "assessed"
	case StatePlanSent:
		return "plan sent"
	default:
		return "no assessment"
	}
}

var (
	ErrUnknownPatient = errors.New("patient is not on the roster")
	ErrNotAssessed    = errors.New("run an assessment before building a plan")
	ErrNoPlan         = errors.New("no plan has been seeded for this patient")
)

// PatientSession is the state of one patient within the running session.
type PatientSession struct {
	Patient      models.Patient
	State        State
	Meds         models.MedsAdherence
	Observations string
	Assessment   *models.RiskAssessment
	WorkingPlan  *models.HomeworkPlan
}

// Store holds every patient's session, keyed by patient id. It is owned by
// a single shell and is not safe for concurrent use.
type Store struct {
	roster      map[string]models.Patient
	sessions    map[string]*PatientSession
	active      string
	defaultNote string
	now         func() time.Time
}

func NewStore(roster []models.Patient, defaultNote string) *Store {
	s := &Store{
		roster:      make(map[string]models.Patient, len(roster)),
		sessions:    make(map[string]*PatientSession, len(roster)),
		defaultNote: defaultNote,
		now:         time.Now,
	}
	for _, p := range roster {
		s.roster[p.ID] = p
	}
	return s
}

func (s *Store) session(patientID string) (*PatientSession, error) {
	p, ok := s.roster[patientID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", patientID, ErrUnknownPatient)
	}
	ps, ok := s.sessions[patientID]
	if !ok {
		ps = &PatientSession{Patient: p, Meds: models.MedsYes}
		s.sessions[patientID] = ps
	}
	return ps, nil
}

// Select makes patientID the active patient. Switching to a different
// patient drops that patient back to StateNoAssessment; plan edits made
// earlier in the session are kept.
func (s *Store) Select(patientID string) error {
	ps, err := s.session(patientID)
	if err != nil {
		return err
	}
	if s.active == patientID {
		return nil
	}
	s.active = patientID
	ps.State = StateNoAssessment
	ps.Assessment = nil
	return nil
}

// Active returns the active patient id, or "" when none is selected.
func (s *Store) Active() string {
	return s.active
}

// Current returns a snapshot of the active patient's session.
func (s *Store) Current() (PatientSession, bool) {
	if s.active == "" {
		return PatientSession{}, false
	}
	return s.Get(s.active)
}

// Get returns a snapshot of a patient's session.
func (s *Store) Get(patientID string) (PatientSession, bool) {
	ps, ok := s.sessions[patientID]
	if !ok {
		return PatientSession{}, false
	}
	snapshot := *ps
	if ps.Assessment != nil {
		a := *ps.Assessment
		a.Reasons = append([]string(nil), ps.Assessment.Reasons...)
		snapshot.Assessment = &a
	}
	if ps.WorkingPlan != nil {
		p := ps.WorkingPlan.Clone()
		snapshot.WorkingPlan = &p
	}
	return snapshot, true
}

// Checkpoint captures the patient's session and the active selection. The
// returned func puts both back, undoing changes that could not be saved.
func (s *Store) Checkpoint(patientID string) (restore func()) {
	active := s.active
	prev, had := s.Get(patientID)
	return func() {
		s.active = active
		if !had {
			delete(s.sessions, patientID)
			return
		}
		ps := prev
		s.sessions[patientID] = &ps
	}
}

// RecordAssessment stores the session form answers and the computed
// assessment. The first assessment for a patient seeds the homework plan
// from the defaults table; later assessments never overwrite it.
func (s *Store) RecordAssessment(patientID string, meds models.MedsAdherence, observations string, a models.RiskAssessment) (models.HomeworkPlan, error) {
	ps, err := s.session(patientID)
	if err != nil {
		return models.HomeworkPlan{}, err
	}

	ps.Meds = meds
	ps.Observations = observations
	ps.Assessment = &a
	ps.State = StateAssessed

	if ps.WorkingPlan == nil {
		plan := homework.DefaultPlan(a.Level, ps.Patient.Diagnosis)
		plan.ID = uuid.New().String()
		plan.PatientID = patientID
		plan.Note = s.defaultNote
		ps.WorkingPlan = &plan
	}
	return ps.WorkingPlan.Clone(), nil
}

// Plan returns a copy of the patient's working plan.
func (s *Store) Plan(patientID string) (models.HomeworkPlan, error) {
	ps, ok := s.sessions[patientID]
	if !ok || ps.WorkingPlan == nil {
		return models.HomeworkPlan{}, ErrNoPlan
	}
	return ps.WorkingPlan.Clone(), nil
}

// HasPlan reports whether a plan has been seeded for the patient.
func (s *Store) HasPlan(patientID string) bool {
	ps, ok := s.sessions[patientID]
	return ok && ps.WorkingPlan != nil
}

// UpdatePlan replaces the patient's working plan with the therapist's edits
// after validating them. The plan ID and patient are preserved.
func (s *Store) UpdatePlan(patientID string, edited models.HomeworkPlan) error {
	ps, err := s.session(patientID)
	if err != nil {
		return err
	}
	if ps.WorkingPlan == nil {
		return ErrNoPlan
	}
	if err := homework.Validate(edited, ps.Patient.Diagnosis); err != nil {
		return err
	}

	plan := edited.Clone()
	plan.ID = ps.WorkingPlan.ID
	plan.PatientID = patientID
	plan.RiskLevel = ps.WorkingPlan.RiskLevel
	plan.Submitted = false
	plan.SentAt = nil
	ps.WorkingPlan = &plan
	if ps.State == StatePlanSent {
		ps.State = StateAssessed
	}
	return nil
}

// MarkSent submits the working plan. The patient must have been assessed in
// the current visit and the plan must validate.
func (s *Store) MarkSent(patientID string) (models.HomeworkPlan, error) {
	ps, err := s.session(patientID)
	if err != nil {
		return models.HomeworkPlan{}, err
	}
	if ps.State == StateNoAssessment {
		return models.HomeworkPlan{}, ErrNotAssessed
	}
	if ps.WorkingPlan == nil {
		return models.HomeworkPlan{}, ErrNoPlan
	}
	if err := homework.Validate(*ps.WorkingPlan, ps.Patient.Diagnosis); err != nil {
		return models.HomeworkPlan{}, err
	}

	sentAt := s.now()
	if ps.Assessment != nil {
		ps.WorkingPlan.RiskLevel = ps.Assessment.Level
	}
	ps.WorkingPlan.Submitted = true
	ps.WorkingPlan.SentAt = &sentAt
	ps.State = StatePlanSent
	return ps.WorkingPlan.Clone(), nil
}
