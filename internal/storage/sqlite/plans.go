package sqlite

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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PatientID, rec.AssessedAt.UTC().Format(time.RFC3339Nano), string(rec.Meds),
		rec.Observations, rec.Score, string(rec.Level), string(reasons))
	return err
}

func (s *Store) GetAssessments(patientID string, limit int) ([]models.AssessmentRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.Query(`
		SELECT id, patient_id, assessed_at, meds, observations, score, level, reasons
		FROM assessments
		WHERE (? = '' OR patient_id = ?)
		ORDER BY assessed_at DESC
		LIMIT ?`, patientID, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AssessmentRecord{}
	for rows.Next() {
		var rec models.AssessmentRecord
		var assessedAt, meds, level, reasons string
		if err := rows.Scan(&rec.ID, &rec.PatientID, &assessedAt, &meds, &rec.Observations, &rec.Score, &level, &reasons); err != nil {
			return nil, err
		}
		if rec.AssessedAt, err = time.Parse(time.RFC3339Nano, assessedAt); err != nil {
			return nil, fmt.Errorf("invalid stored assessment time %q: %w", assessedAt, err)
		}
		rec.Meds = models.MedsAdherence(meds)
		rec.Level = models.RiskLevel(level)
		if err := json.Unmarshal([]byte(reasons), &rec.Reasons); err != nil {
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
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			risk_level = excluded.risk_level,
			note = excluded.note,
			sent_at = excluded.sent_at`,
		plan.ID, plan.PatientID, string(plan.RiskLevel), plan.Note,
		plan.SentAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM plan_games WHERE plan_id = ?", plan.ID); err != nil {
		return err
	}
	for _, slot := range models.Slots {
		game, ok := plan.Games[slot]
		if !ok {
			continue
		}
		if _, err := tx.Exec(
			"INSERT INTO plan_games (plan_id, slot, game, frequency) VALUES (?, ?, ?, ?)",
			plan.ID, string(slot), game, plan.Frequencies[slot]); err != nil {
			return fmt.Errorf("failed to save %s game: %w", slot, err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetPlan(id string) (models.HomeworkPlan, error) {
	var plan models.HomeworkPlan
	var level, sentAt string
	err := s.db.QueryRow(`
		SELECT id, patient_id, risk_level, note, sent_at
		FROM homework_plans WHERE id = ?`, id).
		Scan(&plan.ID, &plan.PatientID, &level, &plan.Note, &sentAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.HomeworkPlan{}, fmt.Errorf("plan %s: %w", id, storage.ErrNotFound)
		}
		return models.HomeworkPlan{}, err
	}
	if err := finishPlan(&plan, level, sentAt); err != nil {
		return models.HomeworkPlan{}, err
	}
	if err := s.loadGames(&plan); err != nil {
		return models.HomeworkPlan{}, err
	}
	return plan, nil
}

func (s *Store) GetPlans(patientID string) ([]models.HomeworkPlan, error) {
	rows, err := s.db.Query(`
		SELECT id, patient_id, risk_level, note, sent_at
		FROM homework_plans
		WHERE (? = '' OR patient_id = ?)
		ORDER BY sent_at DESC`, patientID, patientID)
	if err != nil {
		return nil, err
	}

	plans := []models.HomeworkPlan{}
	for rows.Next() {
		var plan models.HomeworkPlan
		var level, sentAt string
		if err := rows.Scan(&plan.ID, &plan.PatientID, &level, &plan.Note, &sentAt); err != nil {
			rows.Close()
			return nil, err
		}
		if err := finishPlan(&plan, level, sentAt); err != nil {
			rows.Close()
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Release the single connection before querying games.
	rows.Close()

	for i := range plans {
		if err := s.loadGames(&plans[i]); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

func finishPlan(plan *models.HomeworkPlan, level, sentAt string) error {
	t, err := time.Parse(time.RFC3339Nano, sentAt)
	if err != nil {
		return fmt.Errorf("invalid stored send time %q: %w", sentAt, err)
	}
	plan.RiskLevel = models.RiskLevel(level)
	plan.SentAt = &t
	plan.Submitted = true
	plan.Games = make(map[models.Slot]string, len(models.Slots))
	plan.Frequencies = make(map[models.Slot]int, len(models.Slots))
	return nil
}

func (s *Store) loadGames(plan *models.HomeworkPlan) error {
	rows, err := s.db.Query("SELECT slot, game, frequency FROM plan_games WHERE plan_id = ?", plan.ID)
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
