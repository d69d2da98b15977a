package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/medlog/internal/constants"
)

func TestSettingsMapRoundTrip(t *testing.T) {
	in := Settings{
		Timezone:             "America/Chicago",
		StreakLookbackDays:   14,
		CompletionWindowDays: 7,
		NotificationsEnabled: false,
	}

	out, err := MapToSettings(SettingsToMap(in))
	if err != nil {
		t.Fatalf("MapToSettings() unexpected error: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("settings changed (-in +out):\n%s", diff)
	}
}

func TestMapToSettingsErrors(t *testing.T) {
	tests := []map[string]string{
		{constants.SettingStreakLookbackDays: "thirty"},
		{constants.SettingCompletionWindowDays: "7d"},
	}
	for _, data := range tests {
		if _, err := MapToSettings(data); err == nil {
			t.Errorf("MapToSettings(%v) expected error", data)
		}
	}

	s, err := MapToSettings(map[string]string{"day_start": "07:00"})
	if err != nil {
		t.Fatalf("unknown keys should be ignored, got %v", err)
	}
	if s != (Settings{}) {
		t.Errorf("expected zero settings, got %+v", s)
	}
}

func TestApplyDefaultSettings(t *testing.T) {
	s := Settings{StreakLookbackDays: 10}
	ApplyDefaultSettings(&s)

	if s.Timezone != constants.DefaultTimezone {
		t.Errorf("Timezone = %q, want %q", s.Timezone, constants.DefaultTimezone)
	}
	if s.StreakLookbackDays != 10 {
		t.Errorf("StreakLookbackDays overwritten: %d", s.StreakLookbackDays)
	}
	if s.CompletionWindowDays != constants.DefaultCompletionWindowDays {
		t.Errorf("CompletionWindowDays = %d, want default", s.CompletionWindowDays)
	}
}
