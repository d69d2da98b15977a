package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
)

// TodayInTimezone returns the current calendar day in the specified timezone.
// "Today" follows the user's configured timezone, not the system timezone.
func TodayInTimezone(timezone string) (adherence.Date, error) {
	now, err := NowInTimezone(timezone)
	if err != nil {
		return adherence.Date{}, err
	}
	return adherence.Normalize(now), nil
}

// TodayFromSettings returns the current calendar day using the timezone from settings.
func TodayFromSettings(settings models.Settings) (adherence.Date, error) {
	return TodayInTimezone(settings.Timezone)
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// DoseDueAt returns the moment a dose becomes due in loc. Doses without a
// scheduled time are due at the start of their day.
func DoseDueAt(dose models.Dose, loc *time.Location) (time.Time, error) {
	day, err := adherence.ParseDate(dose.ScheduledDate)
	if err != nil {
		return time.Time{}, err
	}
	if !dose.HasTime() {
		return day.Time(loc), nil
	}

	timeOfDay, err := ParseTime(dose.ScheduledTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %w", err)
	}
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), 0, 0,
		loc,
	), nil
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := ParseTime(timeStr)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
