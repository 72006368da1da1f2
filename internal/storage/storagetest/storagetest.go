// Package storagetest holds behaviour checks shared by every
// storage.Provider implementation.
package storagetest

import (
	"errors"
	"testing"
	"time"

	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/storage"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// Run exercises a freshly initialised, empty provider.
func Run(t *testing.T, store storage.Provider) {
	t.Helper()

	t.Run("NeverSynced", func(t *testing.T) {
		if _, err := store.GetLastSync(); !errors.Is(err, storage.ErrNeverSynced) {
			t.Errorf("expected ErrNeverSynced, got %v", err)
		}
	})

	t.Run("ReplaceReadings", func(t *testing.T) {
		evening := time.Date(2025, 5, 1, 20, 15, 30, 0, time.UTC)
		bio := []models.BiometricReading{
			{PatientID: "RW-001", Date: day("2025-05-01"), RestingHR: 72, HRV: 58, Sleep: 7.5, Activity: 45},
			{PatientID: "RW-002", Date: evening, RestingHR: 90, HRV: 40, Sleep: 5, Activity: 20},
			{PatientID: "RW-001", RestingHR: 80, HRV: 50, Sleep: 6, Activity: 30},
		}
		eeg := []models.EEGReading{
			{PatientID: "RW-001", Session: 1, FAA: -0.1, TBR: 0.5},
			{PatientID: "RW-002", Session: 1, FAA: 0.2, TBR: 0.7},
			{PatientID: "RW-001", Session: 2, FAA: -0.3, TBR: 0.8},
		}
		info := models.SyncInfo{
			SyncedAt:        time.Date(2025, 5, 13, 9, 30, 0, 0, time.UTC),
			BiometricRows:   len(bio),
			EEGRows:         len(eeg),
			BiometricSource: "latest_biometric.csv",
			EEGSource:       "rewire_clean_eeg_sample.csv",
		}
		if err := store.ReplaceReadings(bio, eeg, info); err != nil {
			t.Fatalf("ReplaceReadings failed: %v", err)
		}

		gotBio, err := store.GetBiometrics("RW-001")
		if err != nil {
			t.Fatalf("GetBiometrics failed: %v", err)
		}
		if len(gotBio) != 2 || gotBio[0].RestingHR != 72 || gotBio[1].RestingHR != 80 {
			t.Errorf("unexpected biometrics: %+v", gotBio)
		}
		if !gotBio[0].Date.Equal(day("2025-05-01")) || !gotBio[1].Date.IsZero() {
			t.Errorf("dates not preserved: %v, %v", gotBio[0].Date, gotBio[1].Date)
		}

		all, err := store.GetBiometrics("")
		if err != nil || len(all) != 3 {
			t.Errorf("GetBiometrics(\"\") = %d rows, %v", len(all), err)
		}

		// Same-day rows are ordered by time, so the time of day must survive.
		rw2, err := store.GetBiometrics("RW-002")
		if err != nil || len(rw2) != 1 {
			t.Fatalf("GetBiometrics(RW-002) = %d rows, %v", len(rw2), err)
		}
		if !rw2[0].Date.Equal(evening) {
			t.Errorf("time of day lost: got %v, want %v", rw2[0].Date, evening)
		}

		gotEEG, err := store.GetEEG("RW-001")
		if err != nil {
			t.Fatalf("GetEEG failed: %v", err)
		}
		if len(gotEEG) != 2 || gotEEG[1].FAA != -0.3 || gotEEG[1].Session != 2 {
			t.Errorf("unexpected EEG rows: %+v", gotEEG)
		}

		last, err := store.GetLastSync()
		if err != nil {
			t.Fatalf("GetLastSync failed: %v", err)
		}
		if !last.SyncedAt.Equal(info.SyncedAt) || last.EEGRows != 3 || last.BiometricSource != info.BiometricSource {
			t.Errorf("unexpected sync info: %+v", last)
		}

		// A second sync replaces everything.
		if err := store.ReplaceReadings(bio[:1], nil, info); err != nil {
			t.Fatalf("second ReplaceReadings failed: %v", err)
		}
		all, _ = store.GetBiometrics("")
		eegAll, _ := store.GetEEG("")
		if len(all) != 1 || len(eegAll) != 0 {
			t.Errorf("readings not replaced: %d biometric, %d EEG", len(all), len(eegAll))
		}
	})

	t.Run("Assessments", func(t *testing.T) {
		base := time.Date(2025, 5, 13, 10, 0, 0, 0, time.UTC)
		for i, level := range []models.RiskLevel{models.RiskLow, models.RiskHigh} {
			rec := models.AssessmentRecord{
				ID:           []string{"a-1", "a-2"}[i],
				PatientID:    "RW-003",
				AssessedAt:   base.Add(time.Duration(i) * time.Hour),
				Meds:         models.MedsNo,
				Observations: "tired",
				RiskAssessment: models.RiskAssessment{
					Score:   []int{15, 100}[i],
					Level:   level,
					Reasons: []string{"Medication non-adherence"},
				},
			}
			if err := store.SaveAssessment(rec); err != nil {
				t.Fatalf("SaveAssessment failed: %v", err)
			}
		}

		recs, err := store.GetAssessments("RW-003", 0)
		if err != nil {
			t.Fatalf("GetAssessments failed: %v", err)
		}
		if len(recs) != 2 || recs[0].ID != "a-2" {
			t.Fatalf("expected newest first, got %+v", recs)
		}
		if recs[0].Level != models.RiskHigh || recs[0].Meds != models.MedsNo || len(recs[0].Reasons) != 1 {
			t.Errorf("fields not preserved: %+v", recs[0])
		}

		limited, err := store.GetAssessments("", 1)
		if err != nil || len(limited) != 1 {
			t.Errorf("limit not applied: %d, %v", len(limited), err)
		}
	})

	t.Run("Plans", func(t *testing.T) {
		if _, err := store.GetPlan("missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		sentAt := time.Date(2025, 5, 13, 11, 0, 0, 0, time.UTC)
		plan := models.HomeworkPlan{
			ID:        "plan-1",
			PatientID: "RW-002",
			RiskLevel: models.RiskHigh,
			Games: map[models.Slot]string{
				models.SlotCognitive: "Focus Trainer",
				models.SlotEmotion:   "Impulse Control Game",
				models.SlotEvening:   "Breath Pacer",
			},
			Frequencies: map[models.Slot]int{
				models.SlotCognitive: 7,
				models.SlotEmotion:   5,
				models.SlotEvening:   7,
			},
			Note:      "Focus on consistency and practice this week.",
			Submitted: true,
			SentAt:    &sentAt,
		}
		if err := store.SavePlan(plan); err != nil {
			t.Fatalf("SavePlan failed: %v", err)
		}

		got, err := store.GetPlan("plan-1")
		if err != nil {
			t.Fatalf("GetPlan failed: %v", err)
		}
		if got.Games[models.SlotEmotion] != "Impulse Control Game" || got.Frequencies[models.SlotEmotion] != 5 {
			t.Errorf("games not preserved: %+v", got)
		}
		if !got.Submitted || got.SentAt == nil || !got.SentAt.Equal(sentAt) {
			t.Errorf("send state not preserved: %+v", got)
		}

		// Re-sending updates in place.
		plan.Note = "Updated"
		plan.Frequencies[models.SlotEvening] = 4
		if err := store.SavePlan(plan); err != nil {
			t.Fatalf("SavePlan update failed: %v", err)
		}
		plans, err := store.GetPlans("RW-002")
		if err != nil {
			t.Fatalf("GetPlans failed: %v", err)
		}
		if len(plans) != 1 || plans[0].Note != "Updated" || plans[0].Frequencies[models.SlotEvening] != 4 {
			t.Errorf("unexpected plans: %+v", plans)
		}

		unsent := plan.Clone()
		unsent.ID = "plan-2"
		unsent.SentAt = nil
		if err := store.SavePlan(unsent); err == nil {
			t.Error("saving an unsent plan should fail")
		}

		none, err := store.GetPlans("RW-001")
		if err != nil || len(none) != 0 {
			t.Errorf("expected no plans for RW-001, got %d, %v", len(none), err)
		}
	})
}
