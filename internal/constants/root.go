package constants

import "time"

// DoseStatus is the recorded state of a single scheduled dose
type DoseStatus string

// SessionState represents the current state of the TUI application
type SessionState int

// OutputFormat selects how commands render structured results
type OutputFormat string

const (
	AppName            = "medlog"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/medlog/medlog.db"
	Version            = "v0.3.0"

	// Environment variables
	EnvConfig       = "MEDLOG_CONFIG"
	EnvDBConnection = "MEDLOG_DB_CONNECTION"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Adherence defaults
	DefaultStreakLookbackDays   = 30
	DefaultCompletionWindowDays = 30
	RecentActivityLimit         = 10

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "medlog-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "medlog-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.medlog"
	TrayProcessName        = "medlog-tray"

	// Dose Status constants
	DoseStatusPending DoseStatus = "pending"
	DoseStatusTaken   DoseStatus = "taken"
	DoseStatusMissed  DoseStatus = "missed"

	// Output formats
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// Session States
const (
	StatePatient SessionState = iota
	StateCaretaker
	StateAddDose
	StateConfirmUndo
)

// Valid reports whether s is one of the known dose statuses.
func (s DoseStatus) Valid() bool {
	switch s {
	case DoseStatusPending, DoseStatusTaken, DoseStatusMissed:
		return true
	}
	return false
}
