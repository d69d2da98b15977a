package export

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/storage"
)

// SnapshotVersion is bumped when the snapshot layout changes incompatibly.
const SnapshotVersion = 1

// Snapshot is a full copy of a store, soft deleted rows included.
type Snapshot struct {
	Version    int              `json:"version" yaml:"version"`
	App        string           `json:"app" yaml:"app"`
	ExportedAt time.Time        `json:"exported_at" yaml:"exported_at"`
	Settings   models.Settings  `json:"settings" yaml:"settings"`
	Patients   []models.Patient `json:"patients" yaml:"patients"`
	Doses      []models.Dose    `json:"doses" yaml:"doses"`
}

// Collect reads everything from p.
func Collect(p storage.Provider) (Snapshot, error) {
	settings, err := p.GetSettings()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get settings: %w", err)
	}
	patients, err := p.GetAllPatients(true)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get patients: %w", err)
	}
	doses, err := p.GetAllDoses()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get doses: %w", err)
	}

	return Snapshot{
		Version:    SnapshotVersion,
		App:        constants.AppName,
		ExportedAt: time.Now().UTC(),
		Settings:   settings,
		Patients:   patients,
		Doses:      doses,
	}, nil
}

// Stats counts what Apply wrote.
type Stats struct {
	Patients int
	Doses    int
}

// Apply writes a snapshot into p, which should be freshly initialized.
// Patients go in before doses so every dose finds its patient.
func Apply(p storage.Provider, snap Snapshot) (Stats, error) {
	if snap.Version > SnapshotVersion {
		return Stats{}, fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, SnapshotVersion)
	}

	var stats Stats
	settings := snap.Settings
	models.ApplyDefaultSettings(&settings)
	if err := p.SaveSettings(settings); err != nil {
		return stats, fmt.Errorf("failed to save settings: %w", err)
	}

	for _, patient := range snap.Patients {
		if err := p.AddPatient(patient); err != nil {
			return stats, fmt.Errorf("failed to add patient %s: %w", patient.ID, err)
		}
		stats.Patients++
	}
	for _, dose := range snap.Doses {
		if err := p.AddDose(dose); err != nil {
			return stats, fmt.Errorf("failed to add dose %s: %w", dose.ID, err)
		}
		stats.Doses++
	}
	return stats, nil
}

// Write encodes v as JSON or YAML. Text is not a valid export format.
func Write(w io.Writer, v any, format constants.OutputFormat) error {
	switch format {
	case constants.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case constants.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q (use json or yaml)", format)
	}
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader, format constants.OutputFormat) (Snapshot, error) {
	var snap Snapshot
	var err error
	switch format {
	case constants.FormatJSON:
		err = json.NewDecoder(r).Decode(&snap)
	case constants.FormatYAML:
		err = yaml.NewDecoder(r).Decode(&snap)
	default:
		return Snapshot{}, fmt.Errorf("unsupported import format %q (use json or yaml)", format)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.App != "" && snap.App != constants.AppName {
		return Snapshot{}, fmt.Errorf("snapshot was written by %q, not %s", snap.App, constants.AppName)
	}
	return snap, nil
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) constants.OutputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return constants.FormatYAML
	}
	return constants.FormatJSON
}
