package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/medlog/internal/cli"
	"github.com/julianstephens/medlog/internal/cli/backups"
	"github.com/julianstephens/medlog/internal/cli/doses"
	"github.com/julianstephens/medlog/internal/cli/patients"
	"github.com/julianstephens/medlog/internal/cli/settings"
	"github.com/julianstephens/medlog/internal/cli/stats"
	"github.com/julianstephens/medlog/internal/cli/system"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/errors"
	"github.com/julianstephens/medlog/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite database path or PostgreSQL connection string. Credentials must NOT be embedded in a PostgreSQL connection string; use the OS keyring, MEDLOG_DB_CONNECTION or .pgpass instead. Defaults to the stored connection string, then ~/.config/medlog/medlog.db." env:"MEDLOG_CONFIG"`
	Debug    bool   `help:"Enable debug logging."`
	Timezone string `help:"Override the timezone setting for this run (IANA name or Local)."`

	Init    system.InitCmd    `cmd:"" help:"Initialize medlog storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive dashboard." default:"withargs"`
	Remind  system.RemindCmd  `cmd:"" help:"Send reminders for doses still pending today."`

	Patient struct {
		Add     patients.PatientAddCmd     `cmd:"" help:"Add a patient."`
		Edit    patients.PatientEditCmd    `cmd:"" help:"Edit a patient."`
		List    patients.PatientListCmd    `cmd:"" help:"List patients."`
		Delete  patients.PatientDeleteCmd  `cmd:"" help:"Delete a patient and their doses."`
		Restore patients.PatientRestoreCmd `cmd:"" help:"Restore a deleted patient."`
	} `cmd:"" help:"Manage patients."`

	Dose struct {
		Add     doses.DoseAddCmd     `cmd:"" help:"Schedule one or more daily doses."`
		List    doses.DoseListCmd    `cmd:"" help:"List a patient's doses."`
		Edit    doses.DoseEditCmd    `cmd:"" help:"Edit a scheduled dose."`
		Take    doses.DoseTakeCmd    `cmd:"" help:"Mark a dose taken."`
		Miss    doses.DoseMissCmd    `cmd:"" help:"Mark a dose missed."`
		Undo    doses.DoseUndoCmd    `cmd:"" help:"Reset a dose to pending."`
		Delete  doses.DoseDeleteCmd  `cmd:"" help:"Delete a dose."`
		Restore doses.DoseRestoreCmd `cmd:"" help:"Restore a deleted dose."`
	} `cmd:"" help:"Manage doses."`

	Stats struct {
		Summary  stats.StatsSummaryCmd  `cmd:"" help:"Show the adherence summary." default:"withargs"`
		Day      stats.StatsDayCmd      `cmd:"" help:"Classify a single day."`
		Streak   stats.StatsStreakCmd   `cmd:"" help:"Show the current streak."`
		Period   stats.StatsPeriodCmd   `cmd:"" help:"Show the completion rate for a date range."`
		Calendar stats.StatsCalendarCmd `cmd:"" help:"Show a month calendar."`
	} `cmd:"" help:"Adherence statistics."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`

	Export  system.ExportCmd  `cmd:"" help:"Export all data to a JSON or YAML snapshot."`
	Import  system.ImportCmd  `cmd:"" help:"Import a snapshot written by export."`
	Metrics system.MetricsCmd `cmd:"" help:"Write adherence gauges for the Prometheus textfile collector."`

	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`

	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
}

// noLoad lists top-level commands that open the store themselves or never touch it.
var noLoad = map[string]bool{
	"init":    true,
	"doctor":  true,
	"migrate": true,
	"tui":     true,
	"keyring": true,
}

func topLevel(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Medication adherence tracker for patients and caretakers"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir()}); err != nil {
		// Logging is best effort; commands still run without a log file.
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := cli.OpenStore(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	if !noLoad[topLevel(ctx.Command())] {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	appCtx := &cli.Context{
		Store:    store,
		Timezone: CLI.Timezone,
	}
	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}

// configDir is where logs go: next to a sqlite database, or the default config directory.
func configDir() string {
	path := CLI.Config
	if path == "" || cli.IsPostgres(path) {
		path = constants.DefaultConfigPath
	}
	expanded, err := cli.ExpandPath(path)
	if err != nil {
		return filepath.Dir(path)
	}
	return filepath.Dir(expanded)
}
