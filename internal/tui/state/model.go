package state

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/cli"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/storage"
	"github.com/julianstephens/medlog/internal/tui/components/dashboard"
	"github.com/julianstephens/medlog/internal/tui/components/doses"
	"github.com/julianstephens/medlog/internal/validation"
)

// DoseFormModel represents the form model for scheduling doses
type DoseFormModel struct {
	Medication string
	Date       string
	Time       string
	Days       string
}

// Model represents the shared state for the TUI
type Model struct {
	Ctx                 *cli.Context
	Store               storage.Provider
	State               constants.SessionState
	PreviousState       constants.SessionState
	Keys                KeyMap
	Help                help.Model
	Patients            []models.Patient
	PatientIdx          int
	Today               adherence.Date
	Month               adherence.Window
	Summary             adherence.Summary
	DoseList            doses.Model
	Dashboard           dashboard.Model
	Form                *huh.Form
	DoseForm            *DoseFormModel
	DoseToUndoID        string
	Quitting            bool
	Width               int
	Height              int
	ValidationWarning   string                // Validation warning message to display
	ValidationConflicts []validation.Conflict // Detailed conflict information
	StatusMessage       string                // Result of the last action
	LoadError           string                // Set when the last refresh failed
}

// New creates a new state Model focused on the patient matching patientRef,
// or on the first patient when patientRef is empty.
func New(ctx *cli.Context, patientRef string) (Model, error) {
	m := Model{
		Ctx:       ctx,
		Store:     ctx.Store,
		State:     constants.StatePatient,
		Keys:      DefaultKeyMap(),
		Help:      help.New(),
		DoseList:  doses.New(nil, adherence.Date{}, 0, 0),
		Dashboard: dashboard.New(0, 0),
	}

	if err := m.Refresh(); err != nil {
		return m, err
	}

	if patientRef != "" {
		patient, err := storage.ResolvePatient(ctx.Store, patientRef)
		if err != nil {
			return m, err
		}
		for i, p := range m.Patients {
			if p.ID == patient.ID {
				m.PatientIdx = i
			}
		}
		if err := m.Refresh(); err != nil {
			return m, err
		}
	}
	return m, nil
}

// CurrentPatient returns the patient the views are showing.
func (m *Model) CurrentPatient() (models.Patient, bool) {
	if len(m.Patients) == 0 {
		return models.Patient{}, false
	}
	return m.Patients[m.PatientIdx], true
}

// SelectPatient moves the focus by delta patients, wrapping around.
func (m *Model) SelectPatient(delta int) error {
	n := len(m.Patients)
	if n == 0 {
		return nil
	}
	m.PatientIdx = ((m.PatientIdx+delta)%n + n) % n
	return m.Refresh()
}

// ShiftMonth moves the calendar by delta months.
func (m *Model) ShiftMonth(delta int) error {
	first := adherence.NewDate(m.Month.Start.Year(), m.Month.Start.Month()+time.Month(delta), 1)
	m.Month = adherence.MonthWindow(first.Year(), first.Month())
	return m.Refresh()
}

// Refresh reloads the focused patient's doses and recomputes every statistic.
// It runs after each change so the views never show stale numbers.
func (m *Model) Refresh() error {
	if err := m.refresh(); err != nil {
		m.LoadError = err.Error()
		return err
	}
	m.LoadError = ""
	return nil
}

func (m *Model) refresh() error {
	today, err := m.Ctx.Today()
	if err != nil {
		return err
	}
	m.Today = today
	if m.Month.Empty() {
		m.Month = adherence.MonthWindow(today.Year(), today.Month())
	}

	engine, err := m.Ctx.Engine()
	if err != nil {
		return err
	}

	patients, err := m.Store.GetAllPatients(false)
	if err != nil {
		return fmt.Errorf("failed to load patients: %w", err)
	}
	m.Patients = patients
	if m.PatientIdx >= len(patients) {
		m.PatientIdx = 0
	}

	patient, ok := m.CurrentPatient()
	if !ok {
		m.Summary = adherence.Summary{}
		m.DoseList.SetDoses(nil, today)
		m.Dashboard.SetData("", m.Summary, m.Month, nil, nil)
		m.ValidationConflicts = nil
		m.ValidationWarning = ""
		return nil
	}

	all, err := m.Store.GetAllDosesForPatient(patient.ID)
	if err != nil {
		return fmt.Errorf("failed to load doses for %s: %w", patient.Name, err)
	}
	idx, err := adherence.NewIndex(all)
	if err != nil {
		return err
	}

	m.Summary = engine.SummarizeIndex(idx, today)
	m.DoseList.SetDoses(idx.DosesOn(today), today)

	var past []models.Dose
	for _, day := range idx.Days() {
		if day.After(today) {
			break
		}
		past = append(past, idx.DosesOn(day)...)
	}
	m.Dashboard.SetData(patient.Name, m.Summary, m.Month,
		adherence.Annotate(idx, m.Month, today),
		adherence.MostRecent(past, constants.RecentActivityLimit))

	m.UpdateValidationStatus(patient, all)
	return nil
}
