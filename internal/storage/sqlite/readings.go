package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rewiredtx/rewire/internal/models"
	"github.com/rewiredtx/rewire/internal/storage"
)

func (s *Store) ReplaceReadings(bio []models.BiometricReading, eeg []models.EEGReading, info models.SyncInfo) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin sync transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM biometric_readings"); err != nil {
		return fmt.Errorf("failed to clear biometric readings: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM eeg_readings"); err != nil {
		return fmt.Errorf("failed to clear EEG readings: %w", err)
	}

	bioStmt, err := tx.Prepare(`
		INSERT INTO biometric_readings (seq, patient_id, date, resting_hr, hrv, sleep, activity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer bioStmt.Close()
	for i, r := range bio {
		var date sql.NullString
		if !r.Date.IsZero() {
			date = sql.NullString{String: r.Date.UTC().Format(time.RFC3339Nano), Valid: true}
		}
		if _, err := bioStmt.Exec(i, r.PatientID, date, r.RestingHR, r.HRV, r.Sleep, r.Activity); err != nil {
			return fmt.Errorf("failed to insert biometric row %d: %w", i+1, err)
		}
	}

	eegStmt, err := tx.Prepare(`
		INSERT INTO eeg_readings (seq, patient_id, session, faa, tbr)
		VALUES (?, ?, ?, ?, ?)`)
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
		VALUES (?, ?, ?, ?, ?)`,
		info.SyncedAt.UTC().Format(time.RFC3339Nano), info.BiometricRows, info.EEGRows,
		info.BiometricSource, info.EEGSource); err != nil {
		return fmt.Errorf("failed to record sync: %w", err)
	}

	return tx.Commit()
}

func (s *Store) GetBiometrics(patientID string) ([]models.BiometricReading, error) {
	rows, err := s.db.Query(`
		SELECT patient_id, date, resting_hr, hrv, sleep, activity
		FROM biometric_readings
		WHERE (? = '' OR patient_id = ?)
		ORDER BY seq`, patientID, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.BiometricReading{}
	for rows.Next() {
		var r models.BiometricReading
		var date sql.NullString
		if err := rows.Scan(&r.PatientID, &date, &r.RestingHR, &r.HRV, &r.Sleep, &r.Activity); err != nil {
			return nil, err
		}
		if date.Valid && date.String != "" {
			if r.Date, err = time.Parse(time.RFC3339Nano, date.String); err != nil {
				return nil, fmt.Errorf("invalid stored date %q: %w", date.String, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetEEG(patientID string) ([]models.EEGReading, error) {
	rows, err := s.db.Query(`
		SELECT patient_id, session, faa, tbr
		FROM eeg_readings
		WHERE (? = '' OR patient_id = ?)
		ORDER BY seq`, patientID, patientID)
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
	var syncedAt string
	err := s.db.QueryRow(`
		SELECT synced_at, biometric_rows, eeg_rows, biometric_source, eeg_source
		FROM sync_log ORDER BY id DESC LIMIT 1`).
		Scan(&syncedAt, &info.BiometricRows, &info.EEGRows, &info.BiometricSource, &info.EEGSource)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SyncInfo{}, storage.ErrNeverSynced
		}
		return models.SyncInfo{}, err
	}
	if info.SyncedAt, err = time.Parse(time.RFC3339Nano, syncedAt); err != nil {
		return models.SyncInfo{}, fmt.Errorf("invalid stored sync time %q: %w", syncedAt, err)
	}
	return info, nil
}
