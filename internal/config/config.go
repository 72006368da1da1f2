// Package config loads user settings from config.yaml and REWIRE_*
// environment variables and keeps them current while the dashboard runs.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/rewiredtx/rewire/internal/constants"
	"github.com/rewiredtx/rewire/internal/logger"
	"github.com/rewiredtx/rewire/internal/neuro"
)

// Settings is the top-level settings structure.
type Settings struct {
	Data   DataSettings   `mapstructure:"data"`
	EEG    EEGSettings    `mapstructure:"eeg"`
	Report ReportSettings `mapstructure:"report"`
	Plan   PlanSettings   `mapstructure:"plan"`
	Log    LogSettings    `mapstructure:"log"`
}

// DataSettings points at the exported CSV tables. Relative paths are
// resolved against the config directory.
type DataSettings struct {
	BiometricCSV string `mapstructure:"biometric_csv"`
	EEGCSV       string `mapstructure:"eeg_csv"`
}

type EEGSettings struct {
	WindowSize int `mapstructure:"window_size"`
}

type ReportSettings struct {
	OutputDir string `mapstructure:"output_dir"`
}

type PlanSettings struct {
	DefaultNote string `mapstructure:"default_note"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.biometric_csv", constants.DefaultBiometricCSV)
	v.SetDefault("data.eeg_csv", constants.DefaultEEGCSV)
	v.SetDefault("eeg.window_size", neuro.DefaultWindowSize)
	v.SetDefault("report.output_dir", constants.DefaultReportsDir)
	v.SetDefault("plan.default_note", constants.DefaultPlanNote)
	v.SetDefault("log.level", "warn")
}

// Validate rejects settings the dashboard cannot run with.
func (s Settings) Validate() error {
	if s.EEG.WindowSize < 1 {
		return fmt.Errorf("eeg.window_size must be at least 1, got %d", s.EEG.WindowSize)
	}
	if strings.TrimSpace(s.Data.BiometricCSV) == "" || strings.TrimSpace(s.Data.EEGCSV) == "" {
		return errors.New("data.biometric_csv and data.eeg_csv must be set")
	}
	return nil
}

// Manager owns the viper instance and the current settings.
type Manager struct {
	v         *viper.Viper
	configDir string

	mu       sync.RWMutex
	settings Settings
}

// SettingsPath returns the default settings file for a config directory.
func SettingsPath(configDir string) string {
	return filepath.Join(configDir, constants.SettingsFileName+"."+constants.SettingsFileType)
}

// Load reads settings from file (if it exists), environment and defaults.
// An explicit file path overrides the config-directory lookup.
func Load(configDir, file string) (*Manager, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(configDir)
		v.SetConfigName(constants.SettingsFileName)
		v.SetConfigType(constants.SettingsFileType)
	}

	v.SetEnvPrefix(constants.EnvPrefix) // e.g. REWIRE_EEG_WINDOW_SIZE
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine unless one was named explicitly.
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading settings file: %w", err)
		}
	}

	m := &Manager{v: v, configDir: configDir}
	if err := m.reload(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) reload() error {
	var s Settings
	if err := m.v.Unmarshal(&s); err != nil {
		return fmt.Errorf("unable to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	s.Data.BiometricCSV = m.resolve(s.Data.BiometricCSV)
	s.Data.EEGCSV = m.resolve(s.Data.EEGCSV)
	s.Report.OutputDir = m.resolve(s.Report.OutputDir)

	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()
	return nil
}

func (m *Manager) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.configDir, p)
}

// Settings returns the current settings.
func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// File returns the settings file in use, or "" when running on defaults.
func (m *Manager) File() string {
	return m.v.ConfigFileUsed()
}

// Watch reloads settings whenever the file changes and passes the new values
// to onChange. Invalid edits are logged and the previous settings kept.
func (m *Manager) Watch(onChange func(Settings)) {
	if m.v.ConfigFileUsed() == "" {
		return
	}
	m.v.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("Settings file changed, reloading", "file", e.Name, "op", e.Op.String())
		if err := m.reload(); err != nil {
			logger.Error("Failed to reload settings", "error", err)
			return
		}
		if onChange != nil {
			onChange(m.Settings())
		}
	})
	m.v.WatchConfig()
}

// WriteDefault writes a settings file with default values unless one exists.
func WriteDefault(path string) (bool, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType(constants.SettingsFileType)
	if err := v.SafeWriteConfigAs(path); err != nil {
		var exists viper.ConfigFileAlreadyExistsError
		if errors.As(err, &exists) {
			return false, nil
		}
		return false, fmt.Errorf("failed to write settings file: %w", err)
	}
	return true, nil
}
