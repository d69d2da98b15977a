package settings

import (
	"fmt"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/cli"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone             *string `help:"IANA timezone that defines \"today\" (or Local)."`
	StreakLookbackDays   *int    `help:"How many days back the streak may count."`
	CompletionWindowDays *int    `help:"Days in the trailing completion rate window."`
	NotificationsEnabled *bool   `help:"Enable or disable reminders."`
}

func (c *SettingsCmd) Validate() error {
	if c.Timezone != nil && !utils.ValidateTimezone(*c.Timezone) {
		return fmt.Errorf("invalid timezone %q", *c.Timezone)
	}
	if c.StreakLookbackDays != nil && *c.StreakLookbackDays <= 0 {
		return fmt.Errorf("--streak-lookback-days must be positive")
	}
	if c.CompletionWindowDays != nil && *c.CompletionWindowDays <= 0 {
		return fmt.Errorf("--completion-window-days must be positive")
	}
	return nil
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	if err := c.Validate(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&settings)

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  Timezone:               %s\n", settings.Timezone)
		ctx.Printf("  Streak Lookback:        %d days\n", settings.StreakLookbackDays)
		ctx.Printf("  Completion Window:      %d days\n", settings.CompletionWindowDays)
		ctx.Println("\nNotification Settings:")
		ctx.Printf("  Notifications Enabled:  %v\n", settings.NotificationsEnabled)
		return nil
	}

	updated := false
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.StreakLookbackDays != nil {
		settings.StreakLookbackDays = *c.StreakLookbackDays
		updated = true
	}
	if c.CompletionWindowDays != nil {
		settings.CompletionWindowDays = *c.CompletionWindowDays
		updated = true
	}
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	// Reject combinations the adherence engine would refuse.
	if _, err := adherence.New(adherence.Config{
		StreakLookbackDays:   settings.StreakLookbackDays,
		CompletionWindowDays: settings.CompletionWindowDays,
	}); err != nil {
		return err
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")
	return nil
}
