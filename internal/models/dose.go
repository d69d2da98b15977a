package models

import (
	"time"

	"github.com/julianstephens/medlog/internal/constants"
)

// Dose is one scheduled intake of a medication for one patient on one day.
// A patient may have several doses on the same day, including several of the
// same medication at different times.
type Dose struct {
	ID             string               `json:"id" yaml:"id"`
	PatientID      string               `json:"patient_id" yaml:"patient_id"`
	MedicationName string               `json:"medication_name" yaml:"medication_name"`
	ScheduledDate  string               `json:"scheduled_date" yaml:"scheduled_date"`                     // YYYY-MM-DD
	ScheduledTime  string               `json:"scheduled_time,omitempty" yaml:"scheduled_time,omitempty"` // HH:MM, empty when no specific time
	Status         constants.DoseStatus `json:"status" yaml:"status"`
	CreatedAt      time.Time            `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at" yaml:"updated_at"`
	DeletedAt      *time.Time           `json:"deleted_at,omitempty" yaml:"deleted_at,omitempty"`
}

// HasTime reports whether the dose was scheduled for a specific time of day.
func (d Dose) HasTime() bool {
	return d.ScheduledTime != ""
}
