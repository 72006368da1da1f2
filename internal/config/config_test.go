package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rewiredtx/rewire/internal/constants"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	m, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s := m.Settings()
	if s.EEG.WindowSize != 4 {
		t.Errorf("window size = %d, want 4", s.EEG.WindowSize)
	}
	if s.Data.BiometricCSV != filepath.Join(dir, constants.DefaultBiometricCSV) {
		t.Errorf("biometric path not resolved against config dir: %s", s.Data.BiometricCSV)
	}
	if s.Plan.DefaultNote != constants.DefaultPlanNote {
		t.Errorf("default note = %q", s.Plan.DefaultNote)
	}
	if m.File() != "" {
		t.Errorf("no settings file expected, got %s", m.File())
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "data:\n  biometric_csv: /srv/exports/bio.csv\neeg:\n  window_size: 6\nplan:\n  default_note: Practice daily.\n"
	if err := os.WriteFile(SettingsPath(dir), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
	t.Setenv("REWIRE_EEG_WINDOW_SIZE", "3")

	m, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s := m.Settings()
	if s.Data.BiometricCSV != "/srv/exports/bio.csv" {
		t.Errorf("absolute path should be kept, got %s", s.Data.BiometricCSV)
	}
	if s.EEG.WindowSize != 3 {
		t.Errorf("env var should override file, got window size %d", s.EEG.WindowSize)
	}
	if s.Plan.DefaultNote != "Practice daily." {
		t.Errorf("default note = %q", s.Plan.DefaultNote)
	}
	if m.File() == "" {
		t.Error("expected settings file to be reported")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(SettingsPath(dir), []byte("eeg:\n  window_size: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
	if _, err := Load(dir, ""); err == nil {
		t.Error("expected validation error for window_size 0")
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for explicit missing settings file")
	}
}

func TestWriteDefault(t *testing.T) {
	path := SettingsPath(t.TempDir())
	created, err := WriteDefault(path)
	if err != nil || !created {
		t.Fatalf("WriteDefault = %v, %v", created, err)
	}
	created, err = WriteDefault(path)
	if err != nil || created {
		t.Errorf("second WriteDefault should be a no-op, got %v, %v", created, err)
	}

	m, err := Load(filepath.Dir(path), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Settings().EEG.WindowSize != 4 {
		t.Errorf("written defaults not loaded: %+v", m.Settings())
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := SettingsPath(dir)
	if err := os.WriteFile(path, []byte("eeg:\n  window_size: 4\n"), 0644); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
	m, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	changed := make(chan Settings, 4)
	m.Watch(func(s Settings) { changed <- s })

	if err := os.WriteFile(path, []byte("eeg:\n  window_size: 2\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite settings: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-changed:
			if s.EEG.WindowSize == 2 {
				if m.Settings().EEG.WindowSize != 2 {
					t.Errorf("manager not updated")
				}
				return
			}
		case <-deadline:
			t.Skip("no file change event received; filesystem notifications unavailable")
		}
	}
}
