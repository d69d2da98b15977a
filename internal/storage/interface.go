package storage

import (
	"errors"

	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
)

// ErrNotFound is returned when a patient, dose, or settings row does not exist
// or has been soft deleted.
var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Patients
	AddPatient(models.Patient) error
	GetPatient(id string) (models.Patient, error)
	GetPatientByName(name string) (models.Patient, error)
	GetAllPatients(includeDeleted bool) ([]models.Patient, error)
	UpdatePatient(models.Patient) error
	// DeletePatient soft deletes the patient and every dose that belongs to it.
	DeletePatient(id string) error
	// RestorePatient undoes DeletePatient, including the patient's doses.
	RestorePatient(id string) error

	// Doses
	AddDose(models.Dose) error
	GetDose(id string) (models.Dose, error)
	// GetDosesForPatient returns the patient's active doses scheduled between
	// startDay and endDay inclusive (YYYY-MM-DD). An empty bound is open.
	GetDosesForPatient(patientID, startDay, endDay string) ([]models.Dose, error)
	GetAllDosesForPatient(patientID string) ([]models.Dose, error)
	GetDosesForDay(patientID, day string) ([]models.Dose, error)
	UpdateDose(models.Dose) error
	// UpdateDoseStatus stores a new status without checking the transition;
	// callers go through SetDoseStatus.
	UpdateDoseStatus(id string, status constants.DoseStatus) error
	DeleteDose(id string) error
	RestoreDose(id string) error

	// Bulk Retrieval for Migration and Export
	// GetAllDoses includes soft deleted doses so a copy keeps them restorable.
	GetAllDoses() ([]models.Dose, error)

	// Utils
	GetConfigPath() string
}
