package constants

const (
	AppName            = "rewire"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/rewire/rewire.db"
	Version            = "v0.4.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Environment variables
	EnvDBConnection   = "REWIRE_DB_CONNECTION"
	EnvPrefix         = "REWIRE"
	SettingsFileName  = "config"
	SettingsFileType  = "yaml"
	LogFileName       = "rewire.log"
	DefaultReportsDir = "reports"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "rewire-"
	BackupFileSuffix = ".db"

	// Default data sources written by the wearable/EEG auto-upload
	DefaultBiometricCSV = "latest_biometric.csv"
	DefaultEEGCSV       = "rewire_clean_eeg_sample.csv"

	// DefaultPlanNote is the message prefilled in the plan builder
	DefaultPlanNote = "Focus on consistency and practice this week."

	// DemoNotice is shown in the dashboard footer and in reports
	DemoNotice = "This tool is for demonstration purposes only and not yet approved for clinical use."

	// Footer lines
	ContactNotice    = "Questions or concerns? Visit rewiredtx.com"
	RegulatoryNotice = "Designed in alignment with FDA Class II Software as a Medical Device (SaMD) guidelines, supporting a future 510(k) submission."
	ReleaseCaption   = "Version 0.4 · Last updated: May 13, 2025"
)
