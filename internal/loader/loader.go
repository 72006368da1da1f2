// Package loader reads the biometric and EEG export tables produced by the
// wearable and EEG pipelines.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rewiredtx/rewire/internal/models"
)

var (
	// ErrSourceMissing means an export file does not exist yet.
	ErrSourceMissing = errors.New("data file not found")
	// ErrMissingColumn means a required header is absent.
	ErrMissingColumn = errors.New("required column missing")
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
}

// header maps lower-cased column names to their index.
type header map[string]int

func newHeader(cols []string) header {
	h := make(header, len(cols))
	for i, c := range cols {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(c, "\ufeff")))
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

func (h header) require(names ...string) error {
	for _, n := range names {
		if _, ok := h[n]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, n)
		}
	}
	return nil
}

func (h header) get(record []string, name string) (string, bool) {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return "", false
	}
	return strings.TrimSpace(record[i]), true
}

func (h header) float(record []string, name string, row int) (float64, error) {
	raw, _ := h.get(record, name)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("row %d: invalid %s %q: %w", row, name, raw, err)
	}
	return v, nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return cr
}

// LoadBiometrics reads a biometric export from disk.
func LoadBiometrics(path string) ([]models.BiometricReading, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadBiometrics(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadBiometrics parses rows with columns patient_id, resting_hr, hrv, sleep,
// activity and an optional date. Extra columns are ignored. Rows without a
// date keep a zero date, so the last such row is treated as the latest.
func ReadBiometrics(r io.Reader) ([]models.BiometricReading, error) {
	cr := newReader(r)
	cols, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []models.BiometricReading{}, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	h := newHeader(cols)
	if err := h.require("patient_id", "resting_hr", "hrv", "sleep", "activity"); err != nil {
		return nil, err
	}

	out := []models.BiometricReading{}
	for row := 1; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if blank(record) {
			continue
		}

		reading := models.BiometricReading{}
		reading.PatientID, _ = h.get(record, "patient_id")
		if raw, ok := h.get(record, "date"); ok && raw != "" {
			if reading.Date, err = parseDate(raw); err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
		}
		if reading.RestingHR, err = h.float(record, "resting_hr", row); err != nil {
			return nil, err
		}
		if reading.HRV, err = h.float(record, "hrv", row); err != nil {
			return nil, err
		}
		if reading.Sleep, err = h.float(record, "sleep", row); err != nil {
			return nil, err
		}
		if reading.Activity, err = h.float(record, "activity", row); err != nil {
			return nil, err
		}
		out = append(out, reading)
	}
	return out, nil
}

// LoadEEG reads an EEG export from disk.
func LoadEEG(path string) ([]models.EEGReading, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadEEG(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadEEG parses rows with columns patient_id, faa, tbr. Session numbers are
// assigned per patient in file order.
func ReadEEG(r io.Reader) ([]models.EEGReading, error) {
	cr := newReader(r)
	cols, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []models.EEGReading{}, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	h := newHeader(cols)
	if err := h.require("patient_id", "faa", "tbr"); err != nil {
		return nil, err
	}

	out := []models.EEGReading{}
	sessions := make(map[string]int)
	for row := 1; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if blank(record) {
			continue
		}

		reading := models.EEGReading{}
		reading.PatientID, _ = h.get(record, "patient_id")
		if reading.FAA, err = h.float(record, "faa", row); err != nil {
			return nil, err
		}
		if reading.TBR, err = h.float(record, "tbr", row); err != nil {
			return nil, err
		}
		sessions[reading.PatientID]++
		reading.Session = sessions[reading.PatientID]
		out = append(out, reading)
	}
	return out, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
