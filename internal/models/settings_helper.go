package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/medlog/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Unknown keys are ignored.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingStreakLookbackDays:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.StreakLookbackDays = n
		case constants.SettingCompletionWindowDays:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.CompletionWindowDays = n
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:             settings.Timezone,
		constants.SettingStreakLookbackDays:   strconv.Itoa(settings.StreakLookbackDays),
		constants.SettingCompletionWindowDays: strconv.Itoa(settings.CompletionWindowDays),
		constants.SettingNotificationsEnabled: strconv.FormatBool(settings.NotificationsEnabled),
	}
}

// DefaultSettings returns the settings written by a fresh init.
func DefaultSettings() Settings {
	return Settings{
		Timezone:             constants.DefaultTimezone,
		StreakLookbackDays:   constants.DefaultStreakLookbackDays,
		CompletionWindowDays: constants.DefaultCompletionWindowDays,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.StreakLookbackDays == 0 {
		settings.StreakLookbackDays = constants.DefaultStreakLookbackDays
	}
	if settings.CompletionWindowDays == 0 {
		settings.CompletionWindowDays = constants.DefaultCompletionWindowDays
	}
}
