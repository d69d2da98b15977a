package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
)

// ErrInvalidTransition is returned when a dose status change is not allowed.
var ErrInvalidTransition = errors.New("invalid dose status transition")

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateDose        ConflictType = "duplicate_dose"
	ConflictDuplicatePatientName ConflictType = "duplicate_patient_name"
	ConflictInvalidDateTime      ConflictType = "invalid_datetime"
	ConflictInvalidStatus        ConflictType = "invalid_status"
	ConflictMissingMedication    ConflictType = "missing_medication"
	ConflictOrphanedDose         ConflictType = "orphaned_dose"
)

// Conflict represents a detected problem in stored patients or doses
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // YYYY-MM-DD format (if applicable)
	Items       []string // Medication or patient names involved
	DoseIDs     []string // IDs of doses involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator audits stored patients and doses
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateDose checks a single dose before it is written.
func ValidateDose(dose models.Dose) error {
	if strings.TrimSpace(dose.PatientID) == "" {
		return errors.New("dose must belong to a patient")
	}
	if strings.TrimSpace(dose.MedicationName) == "" {
		return errors.New("medication name cannot be empty")
	}
	if _, err := adherence.ParseDate(dose.ScheduledDate); err != nil {
		return err
	}
	if dose.HasTime() && !isValidTimeFormat(dose.ScheduledTime) {
		return fmt.Errorf("invalid time %q (expected HH:MM)", dose.ScheduledTime)
	}
	if !dose.Status.Valid() {
		return fmt.Errorf("invalid status %q", dose.Status)
	}
	return nil
}

// CheckTransition reports whether a dose may move from one status to another.
// Pending doses can be marked taken or missed; taken or missed doses can only
// be undone back to pending.
func CheckTransition(from, to constants.DoseStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	switch from {
	case constants.DoseStatusPending:
		if to == constants.DoseStatusTaken || to == constants.DoseStatusMissed {
			return nil
		}
	case constants.DoseStatusTaken, constants.DoseStatusMissed:
		if to == constants.DoseStatusPending {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// ValidateDoses audits doses against the known patients. Deleted records
// are skipped.
func (v *Validator) ValidateDoses(doses []models.Dose, patients []models.Patient) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	patientNames := make(map[string]string)
	for _, p := range patients {
		if p.DeletedAt == nil {
			patientNames[p.ID] = p.Name
		}
	}

	type slotKey struct {
		patientID, medication, date, time string
	}
	slots := make(map[slotKey][]string)
	var slotOrder []slotKey

	for _, dose := range doses {
		if dose.DeletedAt != nil {
			continue
		}

		if _, ok := patientNames[dose.PatientID]; !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOrphanedDose,
				Description: fmt.Sprintf("Dose %s references unknown or deleted patient %s", dose.ID, dose.PatientID),
				Date:        dose.ScheduledDate,
				Items:       []string{dose.MedicationName},
				DoseIDs:     []string{dose.ID},
			})
		}

		if strings.TrimSpace(dose.MedicationName) == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingMedication,
				Description: fmt.Sprintf("Dose %s has no medication name", dose.ID),
				Date:        dose.ScheduledDate,
				DoseIDs:     []string{dose.ID},
			})
		}

		day, err := adherence.ParseDate(dose.ScheduledDate)
		if err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("Dose %s has invalid scheduled date: %q", dose.ID, dose.ScheduledDate),
				Items:       []string{dose.MedicationName},
				DoseIDs:     []string{dose.ID},
			})
			continue
		}

		if dose.HasTime() && !isValidTimeFormat(dose.ScheduledTime) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("Dose %s has invalid scheduled time: %q", dose.ID, dose.ScheduledTime),
				Date:        day.String(),
				Items:       []string{dose.MedicationName},
				DoseIDs:     []string{dose.ID},
			})
		}

		if !dose.Status.Valid() {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidStatus,
				Description: fmt.Sprintf("Dose %s has unknown status %q", dose.ID, dose.Status),
				Date:        day.String(),
				Items:       []string{dose.MedicationName},
				DoseIDs:     []string{dose.ID},
			})
		}

		key := slotKey{dose.PatientID, strings.ToLower(dose.MedicationName), day.String(), dose.ScheduledTime}
		if _, seen := slots[key]; !seen {
			slotOrder = append(slotOrder, key)
		}
		slots[key] = append(slots[key], dose.ID)
	}

	for _, key := range slotOrder {
		ids := slots[key]
		if len(ids) < 2 {
			continue
		}
		when := key.date
		if key.time != "" {
			when += " " + key.time
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateDose,
			Description: fmt.Sprintf("Duplicate %s doses for %s on %s (IDs: %v)", key.medication, patientNames[key.patientID], when, ids),
			Date:        key.date,
			Items:       []string{key.medication},
			DoseIDs:     ids,
		})
	}

	return result
}

// ValidatePatients checks for duplicate active patient names.
func (v *Validator) ValidatePatients(patients []models.Patient) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	nameCount := make(map[string][]string)
	for _, p := range patients {
		if p.DeletedAt != nil || p.Name == "" {
			continue
		}
		nameCount[p.Name] = append(nameCount[p.Name], p.ID)
	}

	names := make([]string, 0, len(nameCount))
	for name := range nameCount {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ids := nameCount[name]
		if len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicatePatientName,
				Description: fmt.Sprintf("Duplicate patient name: %q (IDs: %v)", name, ids),
				Items:       []string{name},
			})
		}
	}
	return result
}

func isValidTimeFormat(timeStr string) bool {
	_, err := time.Parse(constants.TimeFormat, timeStr)
	return err == nil
}
