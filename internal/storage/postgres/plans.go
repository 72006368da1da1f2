package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/storage"
)

func (s *Store) SaveAssessment(rec models.AssessmentRecord) error {
	reasons, err := json.Marshal(rec.Reasons)
	if err != nil {
		return fmt.Errorf("failed to encode reasons: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO assessments (id, patient_id, assessed_at, meds, observations, score, level, reasons)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.PatientID, rec.AssessedAt.UTC(), string(rec.Meds),
		rec.Observations, rec.Score, string(rec.Level), string(reasons))
	return err
}

func (s *Store) GetAssessments(patientID string, limit int) ([]models.AssessmentRecord, error) {
	var limitArg sql.NullInt64
	if limit > 0 {
		limitArg = sql.NullInt64{Int64: int64(limit), Valid: true}
	}
	rows, err := s.db.Query(`
		SELECT id, patient_id, assessed_at, meds, observations, score, level, reasons
		FROM assessments
		WHERE ($1 = '' OR patient_id = $1)
		ORDER BY assessed_at DESC
		LIMIT $2`, patientID, limitArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AssessmentRecord{}
	for rows.Next() {
		var rec models.AssessmentRecord
		var meds, level string
		var reasons []byte
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.AssessedAt, &meds, &rec.Observations, &rec.Score, &level, &reasons); err != nil {
			return nil, err
		}
		rec.Meds = models.MedsAdherence(meds)
		rec.Level = models.RiskLevel(level)
		if err := json.Unmarshal(reasons, &rec.Reasons); err != nil {
			return nil, fmt.Errorf("invalid stored reasons for %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) SavePlan(plan models.HomeworkPlan) error {
	if plan.SentAt == nil {
		return fmt.Errorf("plan %s has not been sent", plan.ID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO homework_plans (id, patient_id, risk_level, note, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			risk_level = EXCLUDED.risk_level,
			note = EXCLUDED.note,
			sent_at = EXCLUDED.sent_at`,
		plan.ID, plan.PatientID, string(plan.RiskLevel), plan.Note, plan.SentAt.UTC()); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM plan_games WHERE plan_id = $1", plan.ID); err != nil {
		return err
	}
	for _, slot := range models.Slots {
		game, ok := plan.Games[slot]
		if !ok {
			continue
		}
		if _, err := tx.Exec(
			"INSERT INTO plan_games (plan_id, slot, game, frequency) VALUES ($1, $2, $3, $4)",
			plan.ID, string(slot), game, plan.Frequencies[slot]); err != nil {
			return fmt.Errorf("failed to save %s game: %w", slot, err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetPlan(id string) (models.HomeworkPlan, error) {
	var plan models.HomeworkPlan
	var level string
	var sentAt time.Time
	err := s.db.QueryRow(`
		SELECT id, patient_id, risk_level, note, sent_at
		FROM homework_plans WHERE id = $1`, id).
		Scan(&plan.ID, &plan.PatientID, &level, &plan.Note, &sentAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.HomeworkPlan{}, fmt.Errorf("plan %s: %w", id, storage.ErrNotFound)
		}
		return models.HomeworkPlan{}, err
	}
	finishPlan(&plan, level, sentAt)
	if err := s.loadGames(&plan); err != nil {
		return models.HomeworkPlan{}, err
	}
	return plan, nil
}

func (s *Store) GetPlans(patientID string) ([]models.HomeworkPlan, error) {
	rows, err := s.db.Query(`
		SELECT id, patient_id, risk_level, note, sent_at
		FROM homework_plans
		WHERE ($1 = '' OR patient_id = $1)
		ORDER BY sent_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []models.HomeworkPlan{}
	for rows.Next() {
		var plan models.HomeworkPlan
		var level string
		var sentAt time.Time
		if err := rows.Scan(&plan.ID, &plan.PatientID, &level, &plan.Note, &sentAt); err != nil {
			return nil, err
		}
		finishPlan(&plan, level, sentAt)
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range plans {
		if err := s.loadGames(&plans[i]); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

func finishPlan(plan *models.HomeworkPlan, level string, sentAt time.Time) {
	t := sentAt.UTC()
	plan.RiskLevel = models.RiskLevel(level)
	plan.SentAt = &t
	plan.Submitted = true
	plan.Games = make(map[models.Slot]string, len(models.Slots))
	plan.Frequencies = make(map[models.Slot]int, len(models.Slots))
}

func (s *Store) loadGames(plan *models.HomeworkPlan) error {
	rows, err := s.db.Query("SELECT slot, game, frequency FROM plan_games WHERE plan_id = $1", plan.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var slot, game string
		var freq int
		if err := rows.Scan(&slot, &game, &freq); err != nil {
			return err
		}
		plan.Games[models.Slot(slot)] = game
		plan.Frequencies[models.Slot(slot)] = freq
	}
	return rows.Err()
}
