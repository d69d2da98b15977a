package system

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/backup"
	"github.com/julianstephens/medlog/internal/cli"
	"github.com/julianstephens/medlog/internal/storage/sqlite"
	"github.com/julianstephens/medlog/internal/utils"
	"github.com/julianstephens/medlog/internal/validation"
)

// errSkipped marks a check that does not apply to the current store.
var errSkipped = errors.New("not applicable")

type doctorCheck struct {
	name string
	// needsDB checks are skipped when the database could not be loaded.
	needsDB bool
	// warnOnly checks never fail the run.
	warnOnly bool
	run      func(*cli.Context) error
}

var doctorChecks = []doctorCheck{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Settings", needsDB: true, run: checkSettings},
	{name: "Data validation", needsDB: true, run: checkValidation},
	{name: "Adherence data", needsDB: true, run: checkAdherence},
	{name: "Clock/timezone", run: checkClockTimezone},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := false

	for i, check := range doctorChecks {
		if check.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", check.name)
			continue
		}

		err := check.run(ctx)
		switch {
		case errors.Is(err, errSkipped):
			ctx.Printf("⊘ %s: SKIPPED (%v)\n", check.name, err)
		case err != nil && check.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", check.name)
			ctx.Printf("   %v\n", err)
		case err != nil:
			ctx.Printf("❌ %s: FAIL\n", check.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		default:
			ctx.Printf("✓ %s: OK\n", check.name)
		}

		if i == 0 && err == nil {
			dbReachable = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

type dbHolder interface {
	GetDB() *sql.DB
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	h, ok := ctx.Store.(dbHolder)
	if !ok {
		return nil
	}
	db := h.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	runner, err := runnerFor(ctx)
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func checkMigrationsComplete(ctx *cli.Context) error {
	runner, err := runnerFor(ctx)
	if err != nil {
		return err
	}
	pending, err := runner.Pending()
	if err != nil {
		return fmt.Errorf("failed to check pending migrations: %w", err)
	}
	if pending > 0 {
		return fmt.Errorf("%d migration(s) pending, run 'medlog migrate'", pending)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("%w: backups are managed by the database server", errSkipped)
	}

	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'medlog backup create'")
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("invalid timezone setting %q", settings.Timezone)
	}
	_, err = adherence.New(adherence.Config{
		StreakLookbackDays:   settings.StreakLookbackDays,
		CompletionWindowDays: settings.CompletionWindowDays,
	})
	return err
}

func checkValidation(ctx *cli.Context) error {
	patients, err := ctx.Store.GetAllPatients(true)
	if err != nil {
		return fmt.Errorf("failed to get patients: %w", err)
	}
	doses, err := ctx.Store.GetAllDoses()
	if err != nil {
		return fmt.Errorf("failed to get doses: %w", err)
	}

	v := validation.New()
	result := v.ValidatePatients(patients)
	doseResult := v.ValidateDoses(doses, patients)
	result.Conflicts = append(result.Conflicts, doseResult.Conflicts...)

	if result.HasConflicts() {
		return fmt.Errorf("found %d conflict(s)\n%s", len(result.Conflicts), result.FormatReport())
	}
	return nil
}

// checkAdherence makes sure every active patient's doses can be summarized.
func checkAdherence(ctx *cli.Context) error {
	today, err := ctx.Today()
	if err != nil {
		return err
	}
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}
	patients, err := ctx.Store.GetAllPatients(false)
	if err != nil {
		return fmt.Errorf("failed to get patients: %w", err)
	}

	for _, p := range patients {
		doses, err := ctx.Store.GetAllDosesForPatient(p.ID)
		if err != nil {
			return fmt.Errorf("failed to get doses for %s: %w", p.Name, err)
		}
		if _, err := engine.Summarize(doses, today); err != nil {
			return fmt.Errorf("patient %s: %w", p.Name, err)
		}
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if ctx.Now != nil {
		now = ctx.Now()
	}
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	if ctx.Timezone != "" && !utils.ValidateTimezone(ctx.Timezone) {
		return fmt.Errorf("invalid --timezone %q", ctx.Timezone)
	}
	return nil
}
