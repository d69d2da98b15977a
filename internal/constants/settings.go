package constants

const (
	SettingTimezone             = "timezone"
	SettingStreakLookbackDays   = "streak_lookback_days"
	SettingCompletionWindowDays = "completion_window_days"
	SettingNotificationsEnabled = "notifications_enabled"

	// Default Settings Values
	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultNotificationsEnabled = true
)
