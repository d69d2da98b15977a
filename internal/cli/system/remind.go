package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/medlog/internal/cli"
	"github.com/julianstephens/medlog/internal/logger"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/notifier"
	"github.com/julianstephens/medlog/internal/storage"
)

// newSender is replaced in tests.
var newSender = func() notifier.Sender { return notifier.New() }

// RemindCmd sends one notification per patient that still has pending doses today.
type RemindCmd struct {
	Patient string `short:"p" help:"Only remind this patient (name or ID)."`
	DryRun  bool   `help:"Print reminders instead of sending them."`
}

func (c *RemindCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if !settings.NotificationsEnabled && !c.DryRun {
		ctx.Println("Notifications are disabled; enable them with 'medlog settings --notifications-enabled'.")
		return nil
	}

	today, err := ctx.Today()
	if err != nil {
		return err
	}

	patients, err := c.patients(ctx)
	if err != nil {
		return err
	}

	sender := newSender()
	sent := 0
	for _, p := range patients {
		doses, err := ctx.Store.GetDosesForDay(p.ID, today.String())
		if err != nil {
			return fmt.Errorf("failed to get doses for %s: %w", p.Name, err)
		}
		text := notifier.ReminderText(p, doses)
		if text == "" {
			continue
		}

		if c.DryRun {
			ctx.Println(text)
			sent++
			continue
		}
		if err := sender.Notify(context.Background(), text); err != nil {
			return fmt.Errorf("failed to send reminder for %s: %w", p.Name, err)
		}
		logger.Info("Reminder sent", "patient", p.Name)
		sent++
	}

	if sent == 0 {
		ctx.Println("Nothing pending today.")
	} else if !c.DryRun {
		ctx.Printf("Sent %d reminder(s).\n", sent)
	}
	return nil
}

func (c *RemindCmd) patients(ctx *cli.Context) ([]models.Patient, error) {
	if c.Patient != "" {
		p, err := storage.ResolvePatient(ctx.Store, c.Patient)
		if err != nil {
			return nil, err
		}
		return []models.Patient{p}, nil
	}
	patients, err := ctx.Store.GetAllPatients(false)
	if err != nil {
		return nil, fmt.Errorf("failed to get patients: %w", err)
	}
	return patients, nil
}
