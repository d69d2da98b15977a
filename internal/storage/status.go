package storage

import (
	"fmt"

	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/logger"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/validation"
)

// SetDoseStatus moves a dose to a new status if the transition is allowed and
// returns the updated dose.
func SetDoseStatus(p Provider, id string, to constants.DoseStatus) (models.Dose, error) {
	dose, err := p.GetDose(id)
	if err != nil {
		return models.Dose{}, err
	}
	if err := validation.CheckTransition(dose.Status, to); err != nil {
		return models.Dose{}, fmt.Errorf("dose %s (%s on %s): %w", dose.ID, dose.MedicationName, dose.ScheduledDate, err)
	}
	if err := p.UpdateDoseStatus(id, to); err != nil {
		return models.Dose{}, fmt.Errorf("failed to update dose %s: %w", id, err)
	}
	logger.Info("Dose status changed", "dose", id, "patient", dose.PatientID, "from", dose.Status, "to", to)

	return p.GetDose(id)
}

// ResolvePatient finds an active patient by ID first and by name second.
func ResolvePatient(p Provider, ref string) (models.Patient, error) {
	patient, err := p.GetPatient(ref)
	if err == nil {
		return patient, nil
	}
	patient, nameErr := p.GetPatientByName(ref)
	if nameErr != nil {
		return models.Patient{}, fmt.Errorf("patient %q: %w", ref, nameErr)
	}
	return patient, nil
}
