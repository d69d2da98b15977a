package models

// Settings represents application-wide settings
type Settings struct {
	Timezone             string `json:"timezone" yaml:"timezone"`                             // IANA timezone name (e.g. "America/New_York", or "Local" for system timezone)
	StreakLookbackDays   int    `json:"streak_lookback_days" yaml:"streak_lookback_days"`     // how far back the streak walk may go
	CompletionWindowDays int    `json:"completion_window_days" yaml:"completion_window_days"` // trailing window for the day-level completion rate
	NotificationsEnabled bool   `json:"notifications_enabled" yaml:"notifications_enabled"`   // whether reminders are sent
}
