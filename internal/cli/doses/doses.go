package doses

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/cli"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/storage"
	"github.com/julianstephens/medlog/internal/utils"
	"github.com/julianstephens/medlog/internal/validation"
)

// MaxSeriesDays caps how many daily doses one add may create.
const MaxSeriesDays = 366

type DoseAddCmd struct {
	Medication string `arg:"" help:"Medication name."`
	Patient    string `short:"p" help:"Patient name or ID." required:""`
	Date       string `short:"d" help:"First scheduled date (YYYY-MM-DD). Defaults to today."`
	Time       string `short:"t" help:"Scheduled time (HH:MM). Omit for no specific time."`
	Days       int    `short:"n" help:"Schedule one dose per day for this many days." default:"1"`
}

func (c *DoseAddCmd) Validate() error {
	if strings.TrimSpace(c.Medication) == "" {
		return fmt.Errorf("medication name cannot be empty")
	}
	if c.Days < 1 || c.Days > MaxSeriesDays {
		return fmt.Errorf("--days must be between 1 and %d", MaxSeriesDays)
	}
	if c.Time != "" && !utils.ValidateTimeFormat(c.Time) {
		return fmt.Errorf("invalid time %q (expected HH:MM)", c.Time)
	}
	return nil
}

func (c *DoseAddCmd) Run(ctx *cli.Context) error {
	patient, err := storage.ResolvePatient(ctx.Store, c.Patient)
	if err != nil {
		return err
	}
	start, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}

	doses := Series(patient.ID, strings.TrimSpace(c.Medication), start, c.Time, c.Days, time.Now())
	for _, dose := range doses {
		if err := validation.ValidateDose(dose); err != nil {
			return err
		}
	}
	for _, dose := range doses {
		if err := ctx.Store.AddDose(dose); err != nil {
			return fmt.Errorf("failed to add dose for %s: %w", dose.ScheduledDate, err)
		}
	}

	if len(doses) == 1 {
		ctx.Printf("Scheduled %s for %s on %s (ID: %s)\n", doses[0].MedicationName, patient.Name, describeSlot(doses[0]), doses[0].ID)
		return nil
	}
	last := doses[len(doses)-1]
	ctx.Printf("Scheduled %d daily doses of %s for %s from %s to %s\n",
		len(doses), doses[0].MedicationName, patient.Name, doses[0].ScheduledDate, last.ScheduledDate)
	return nil
}

// Series builds one pending dose per day for days days starting at start.
func Series(patientID, medication string, start adherence.Date, at string, days int, now time.Time) []models.Dose {
	doses := make([]models.Dose, 0, days)
	for i := 0; i < days; i++ {
		doses = append(doses, models.Dose{
			ID:             uuid.New().String(),
			PatientID:      patientID,
			MedicationName: medication,
			ScheduledDate:  start.AddDays(i).String(),
			ScheduledTime:  at,
			Status:         constants.DoseStatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return doses
}

type DoseListCmd struct {
	Patient string                 `short:"p" help:"Patient name or ID." required:""`
	Date    string                 `short:"d" help:"Only this day (YYYY-MM-DD)."`
	From    string                 `help:"First day of the range (YYYY-MM-DD)."`
	To      string                 `help:"Last day of the range (YYYY-MM-DD)."`
	Format  constants.OutputFormat `short:"f" help:"Output format (text|json|yaml)." enum:"text,json,yaml" default:"text"`
}

func (c *DoseListCmd) Validate() error {
	if c.Date != "" && (c.From != "" || c.To != "") {
		return fmt.Errorf("--date cannot be combined with --from or --to")
	}
	for _, v := range []string{c.Date, c.From, c.To} {
		if v == "" {
			continue
		}
		if _, err := adherence.ParseDate(v); err != nil {
			return err
		}
	}
	return nil
}

func (c *DoseListCmd) Run(ctx *cli.Context) error {
	patient, err := storage.ResolvePatient(ctx.Store, c.Patient)
	if err != nil {
		return err
	}

	from, to := c.From, c.To
	if c.Date != "" {
		from, to = c.Date, c.Date
	}
	doses, err := ctx.Store.GetDosesForPatient(patient.ID, normalizeDay(from), normalizeDay(to))
	if err != nil {
		return fmt.Errorf("failed to get doses: %w", err)
	}
	doses = adherence.SortForDisplay(doses)

	return cli.Render(ctx.Out(), c.Format, doses, func(w io.Writer) error {
		if len(doses) == 0 {
			fmt.Fprintf(w, "No doses found for %s\n", patient.Name)
			return nil
		}
		fmt.Fprintf(w, "Doses for %s:\n", patient.Name)
		day := ""
		for _, d := range doses {
			if d.ScheduledDate != day {
				day = d.ScheduledDate
				fmt.Fprintf(w, "\n%s\n", day)
			}
			at := d.ScheduledTime
			if at == "" {
				at = "--:--"
			}
			fmt.Fprintf(w, "  %s  %-8s %s (ID: %s)\n", at, statusLabel(d.Status), d.MedicationName, d.ID)
		}
		return nil
	})
}

// normalizeDay rewrites any accepted date spelling to YYYY-MM-DD.
func normalizeDay(value string) string {
	if value == "" {
		return ""
	}
	day, err := adherence.ParseDate(value)
	if err != nil {
		return value
	}
	return day.String()
}

func statusLabel(s constants.DoseStatus) string {
	switch s {
	case constants.DoseStatusTaken:
		return "✓ taken"
	case constants.DoseStatusMissed:
		return "✗ missed"
	default:
		return "· pending"
	}
}

func describeSlot(d models.Dose) string {
	if d.HasTime() {
		return d.ScheduledDate + " at " + d.ScheduledTime
	}
	return d.ScheduledDate
}

type DoseEditCmd struct {
	ID         string  `arg:"" help:"Dose ID."`
	Medication *string `help:"New medication name."`
	Date       *string `help:"New scheduled date (YYYY-MM-DD)."`
	Time       *string `help:"New scheduled time (HH:MM, empty to clear)."`
}

func (c *DoseEditCmd) Run(ctx *cli.Context) error {
	dose, err := ctx.Store.GetDose(c.ID)
	if err != nil {
		return err
	}
	if c.Medication == nil && c.Date == nil && c.Time == nil {
		ctx.Println("No changes specified. Use --medication, --date or --time.")
		return nil
	}

	if c.Medication != nil {
		dose.MedicationName = strings.TrimSpace(*c.Medication)
	}
	if c.Date != nil {
		day, err := adherence.ParseDate(*c.Date)
		if err != nil {
			return err
		}
		dose.ScheduledDate = day.String()
	}
	if c.Time != nil {
		dose.ScheduledTime = *c.Time
	}
	if err := validation.ValidateDose(dose); err != nil {
		return err
	}

	if err := ctx.Store.UpdateDose(dose); err != nil {
		return fmt.Errorf("failed to update dose: %w", err)
	}
	ctx.Printf("Updated dose: %s on %s (ID: %s)\n", dose.MedicationName, describeSlot(dose), dose.ID)
	return nil
}

// statusCmd moves one dose to a new status.
func statusCmd(ctx *cli.Context, id string, to constants.DoseStatus, verb string) error {
	dose, err := storage.SetDoseStatus(ctx.Store, id, to)
	if err != nil {
		return err
	}
	ctx.Printf("%s %s on %s (ID: %s)\n", verb, dose.MedicationName, describeSlot(dose), dose.ID)
	return nil
}

type DoseTakeCmd struct {
	ID string `arg:"" help:"Dose ID."`
}

func (c *DoseTakeCmd) Run(ctx *cli.Context) error {
	return statusCmd(ctx, c.ID, constants.DoseStatusTaken, "Marked taken:")
}

type DoseMissCmd struct {
	ID string `arg:"" help:"Dose ID."`
}

func (c *DoseMissCmd) Run(ctx *cli.Context) error {
	return statusCmd(ctx, c.ID, constants.DoseStatusMissed, "Marked missed:")
}

type DoseUndoCmd struct {
	ID string `arg:"" help:"Dose ID."`
}

func (c *DoseUndoCmd) Run(ctx *cli.Context) error {
	return statusCmd(ctx, c.ID, constants.DoseStatusPending, "Reset to pending:")
}

type DoseDeleteCmd struct {
	ID string `arg:"" help:"Dose ID."`
}

func (c *DoseDeleteCmd) Run(ctx *cli.Context) error {
	dose, err := ctx.Store.GetDose(c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteDose(c.ID); err != nil {
		return fmt.Errorf("failed to delete dose: %w", err)
	}
	ctx.Printf("Deleted dose: %s on %s (ID: %s)\n", dose.MedicationName, describeSlot(dose), dose.ID)
	return nil
}

type DoseRestoreCmd struct {
	ID string `arg:"" help:"ID of the deleted dose."`
}

func (c *DoseRestoreCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.RestoreDose(c.ID); err != nil {
		return fmt.Errorf("failed to restore dose: %w", err)
	}
	ctx.Printf("Restored dose (ID: %s)\n", c.ID)
	return nil
}
