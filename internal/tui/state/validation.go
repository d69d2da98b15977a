package state

import (
	"fmt"

	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/validation"
)

// UpdateValidationStatus checks the patient's doses and updates the warning message
func (m *Model) UpdateValidationStatus(patient models.Patient, doses []models.Dose) {
	result := validation.New().ValidateDoses(doses, []models.Patient{patient})
	m.ValidationConflicts = result.Conflicts

	if len(result.Conflicts) > 0 {
		m.ValidationWarning = fmt.Sprintf("⚠ %d validation warning(s)", len(result.Conflicts))
	} else {
		m.ValidationWarning = ""
	}
}
