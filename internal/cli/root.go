package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/backup"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/export"
	"github.com/julianstephens/medlog/internal/keyring"
	"github.com/julianstephens/medlog/internal/logger"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/storage"
	"github.com/julianstephens/medlog/internal/storage/postgres"
	"github.com/julianstephens/medlog/internal/storage/sqlite"
	"github.com/julianstephens/medlog/internal/utils"
)

type Context struct {
	Store storage.Provider
	// Timezone overrides the timezone setting when not empty.
	Timezone string
	// Stdout receives command output; nil means os.Stdout.
	Stdout io.Writer
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (c *Context) Out() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out(), args...)
}

// Settings returns the stored settings with the --timezone override applied.
func (c *Context) Settings() (models.Settings, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&settings)
	if c.Timezone != "" {
		settings.Timezone = c.Timezone
	}
	return settings, nil
}

// Location returns the timezone that defines "today".
func (c *Context) Location() (*time.Location, error) {
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}
	return loc, nil
}

// Today returns the current calendar day in the configured timezone.
func (c *Context) Today() (adherence.Date, error) {
	loc, err := c.Location()
	if err != nil {
		return adherence.Date{}, err
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return adherence.Normalize(now().In(loc)), nil
}

// Engine builds an adherence engine from the stored settings.
func (c *Context) Engine() (*adherence.Engine, error) {
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	return adherence.New(adherence.Config{
		StreakLookbackDays:   settings.StreakLookbackDays,
		CompletionWindowDays: settings.CompletionWindowDays,
	})
}

// Day parses a YYYY-MM-DD flag value, defaulting to today when empty.
func (c *Context) Day(value string) (adherence.Date, error) {
	if value == "" {
		return c.Today()
	}
	return adherence.ParseDate(value)
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// IsPostgres reports whether config names a PostgreSQL database.
func IsPostgres(config string) bool {
	return strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://") ||
		strings.Contains(config, "host=")
}

// OpenStore picks a storage backend for config without loading it. An empty
// config falls back to a connection string from the environment or keyring,
// then to the default sqlite path. A connection string given directly must not
// embed a password.
func OpenStore(config string) (storage.Provider, error) {
	if config == "" {
		connStr, source, err := keyring.ResolveConnectionString()
		switch {
		case err == nil:
			logger.Debug("Using stored connection string", "source", source)
			return postgres.New(connStr), nil
		case errors.Is(err, keyring.ErrNotFound), errors.Is(err, keyring.ErrKeyringUnavailable):
			config = constants.DefaultConfigPath
		default:
			return nil, err
		}
	}

	if IsPostgres(config) {
		if _, err := postgres.ValidateConnString(config); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w: store it with 'medlog keyring set' or export %s instead", err, constants.EnvDBConnection)
			}
			return nil, err
		}
		return postgres.New(config), nil
	}

	path, err := ExpandPath(config)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Render writes v as JSON or YAML, or calls text for the plain format.
func Render(w io.Writer, format constants.OutputFormat, v any, text func(io.Writer) error) error {
	switch format {
	case "", constants.FormatText:
		return text(w)
	case constants.FormatJSON, constants.FormatYAML:
		return export.Write(w, v, format)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
