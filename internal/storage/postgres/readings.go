package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/storage"
)

func (s *Store) ReplaceReadings(bio []models.BiometricReading, eeg []models.EEGReading, info models.SyncInfo) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin sync transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("TRUNCATE biometric_readings, eeg_readings"); err != nil {
		return fmt.Errorf("failed to clear readings: %w", err)
	}

	bioStmt, err := tx.Prepare(`
		INSERT INTO biometric_readings (seq, patient_id, date, resting_hr, hrv, sleep, activity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		return err
	}
	defer bioStmt.Close()
	for i, r := range bio {
		date := sql.NullTime{Time: r.Date, Valid: !r.Date.IsZero()}
		if _, err := bioStmt.Exec(i, r.PatientID, date, r.RestingHR, r.HRV, r.Sleep, r.Activity); err != nil {
			return fmt.Errorf("failed to insert biometric row %d: %w", i+1, err)
		}
	}

	eegStmt, err := tx.Prepare(`
		INSERT INTO eeg_readings (seq, patient_id, session, faa, tbr)
		VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return err
	}
	defer eegStmt.Close()
	for i, r := range eeg {
		if _, err := eegStmt.Exec(i, r.PatientID, r.Session, r.FAA, r.TBR); err != nil {
			return fmt.Errorf("failed to insert EEG row %d: %w", i+1, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO sync_log (synced_at, biometric_rows, eeg_rows, biometric_source, eeg_source)
		VALUES ($1, $2, $3, $4, $5)`,
		info.SyncedAt.UTC(), info.BiometricRows, info.EEGRows, info.BiometricSource, info.EEGSource); err != nil {
		return fmt.Errorf("failed to record sync: %w", err)
	}

	return tx.Commit()
}

func (s *Store) GetBiometrics(patientID string) ([]models.BiometricReading, error) {
	rows, err := s.db.Query(`
		SELECT patient_id, date, resting_hr, hrv, sleep, activity
		FROM biometric_readings
		WHERE ($1 = '' OR patient_id = $1)
		ORDER BY seq`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.BiometricReading{}
	for rows.Next() {
		var r models.BiometricReading
		var date sql.NullTime
		if err := rows.Scan(&r.PatientID, &date, &r.RestingHR, &r.HRV, &r.Sleep, &r.Activity); err != nil {
			return nil, err
		}
		if date.Valid {
			r.Date = date.Time.UTC()
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetEEG(patientID string) ([]models.EEGReading, error) {
	rows, err := s.db.Query(`
		SELECT patient_id, session, faa, tbr
		FROM eeg_readings
		WHERE ($1 = '' OR patient_id = $1)
		ORDER BY seq`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.EEGReading{}
	for rows.Next() {
		var r models.EEGReading
		if err := rows.Scan(&r.PatientID, &r.Session, &r.FAA, &r.TBR); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetLastSync() (models.SyncInfo, error) {
	var info models.SyncInfo
	err := s.db.QueryRow(`
		SELECT synced_at, biometric_rows, eeg_rows, biometric_source, eeg_source
		FROM sync_log ORDER BY id DESC LIMIT 1`).
		Scan(&info.SyncedAt, &info.BiometricRows, &info.EEGRows, &info.BiometricSource, &info.EEGSource)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SyncInfo{}, storage.ErrNeverSynced
		}
		return models.SyncInfo{}, err
	}
	return info, nil
}
