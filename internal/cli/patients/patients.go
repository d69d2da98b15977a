package patients

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/medlog/internal/cli"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/storage"
)

type PatientAddCmd struct {
	Name  string `arg:"" help:"Patient name."`
	Email string `help:"Contact email for reminders."`
}

func (c *PatientAddCmd) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("patient name cannot be empty")
	}
	return nil
}

func (c *PatientAddCmd) Run(ctx *cli.Context) error {
	name := strings.TrimSpace(c.Name)
	if _, err := ctx.Store.GetPatientByName(name); err == nil {
		return fmt.Errorf("a patient named %q already exists", name)
	}

	patient := models.Patient{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     strings.TrimSpace(c.Email),
		CreatedAt: time.Now(),
	}
	if err := ctx.Store.AddPatient(patient); err != nil {
		return fmt.Errorf("failed to add patient: %w", err)
	}

	ctx.Printf("Added patient: %s (ID: %s)\n", patient.Name, patient.ID)
	return nil
}

type PatientEditCmd struct {
	Patient string  `arg:"" help:"Patient name or ID."`
	Name    *string `help:"New name."`
	Email   *string `help:"New email (empty to clear)."`
}

func (c *PatientEditCmd) Run(ctx *cli.Context) error {
	patient, err := storage.ResolvePatient(ctx.Store, c.Patient)
	if err != nil {
		return err
	}

	if c.Name == nil && c.Email == nil {
		ctx.Println("No changes specified. Use --name or --email.")
		return nil
	}
	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		if name == "" {
			return fmt.Errorf("patient name cannot be empty")
		}
		if other, err := ctx.Store.GetPatientByName(name); err == nil && other.ID != patient.ID {
			return fmt.Errorf("a patient named %q already exists", name)
		}
		patient.Name = name
	}
	if c.Email != nil {
		patient.Email = strings.TrimSpace(*c.Email)
	}

	if err := ctx.Store.UpdatePatient(patient); err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	ctx.Printf("Updated patient: %s (ID: %s)\n", patient.Name, patient.ID)
	return nil
}

type PatientListCmd struct {
	All    bool                   `help:"Include deleted patients."`
	Format constants.OutputFormat `short:"f" help:"Output format (text|json|yaml)." enum:"text,json,yaml" default:"text"`
}

func (c *PatientListCmd) Run(ctx *cli.Context) error {
	patients, err := ctx.Store.GetAllPatients(c.All)
	if err != nil {
		return fmt.Errorf("failed to get patients: %w", err)
	}
	if patients == nil {
		patients = []models.Patient{}
	}

	return cli.Render(ctx.Out(), c.Format, patients, func(w io.Writer) error {
		if len(patients) == 0 {
			fmt.Fprintln(w, "No patients found. Add one with 'medlog patient add NAME'.")
			return nil
		}
		fmt.Fprintln(w, "Patients:")
		for _, p := range patients {
			line := fmt.Sprintf("  %s (ID: %s)", p.Name, p.ID)
			if p.Email != "" {
				line += " <" + p.Email + ">"
			}
			if p.DeletedAt != nil {
				line += " [deleted " + p.DeletedAt.Local().Format(constants.DateFormat) + "]"
			}
			fmt.Fprintln(w, line)
		}
		return nil
	})
}

type PatientDeleteCmd struct {
	Patient string `arg:"" help:"Patient name or ID."`
}

func (c *PatientDeleteCmd) Run(ctx *cli.Context) error {
	patient, err := storage.ResolvePatient(ctx.Store, c.Patient)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeletePatient(patient.ID); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	ctx.Printf("Deleted patient: %s (ID: %s) and their doses\n", patient.Name, patient.ID)
	ctx.Printf("Restore with: medlog patient restore %s\n", patient.ID)
	return nil
}

type PatientRestoreCmd struct {
	ID string `arg:"" help:"ID of the deleted patient."`
}

func (c *PatientRestoreCmd) Run(ctx *cli.Context) error {
	all, err := ctx.Store.GetAllPatients(true)
	if err != nil {
		return fmt.Errorf("failed to get patients: %w", err)
	}

	var patient *models.Patient
	for i := range all {
		if all[i].ID == c.ID {
			patient = &all[i]
			break
		}
	}
	if patient == nil {
		return fmt.Errorf("patient %s: %w", c.ID, storage.ErrNotFound)
	}
	if patient.DeletedAt == nil {
		return fmt.Errorf("patient %s is not deleted", patient.Name)
	}
	if other, err := ctx.Store.GetPatientByName(patient.Name); err == nil {
		return fmt.Errorf("cannot restore: an active patient named %q already exists (ID: %s)", patient.Name, other.ID)
	}

	if err := ctx.Store.RestorePatient(patient.ID); err != nil {
		return fmt.Errorf("failed to restore patient: %w", err)
	}
	ctx.Printf("Restored patient: %s (ID: %s)\n", patient.Name, patient.ID)
	return nil
}
