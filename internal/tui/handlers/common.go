package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/cli/doses"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/tui/state"
	"github.com/julianstephens/medlog/internal/utils"
	"github.com/julianstephens/medlog/internal/validation"
)

// NewDoseForm creates a new form for scheduling doses
func NewDoseForm(fm *state.DoseFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Medication").
				Value(&fm.Medication).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("medication name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("First date (YYYY-MM-DD)").
				Value(&fm.Date).
				Validate(func(s string) error {
					_, err := adherence.ParseDate(strings.TrimSpace(s))
					return err
				}),
			huh.NewInput().
				Title("Time (HH:MM)").
				Description("Leave empty for no specific time").
				Value(&fm.Time).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s != "" && !utils.ValidateTimeFormat(s) {
						return fmt.Errorf("time must be HH:MM")
					}
					return nil
				}),
			huh.NewInput().
				Title("Number of days").
				Value(&fm.Days).
				Validate(func(s string) error {
					i, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return err
					}
					if i <= 0 || i > doses.MaxSeriesDays {
						return fmt.Errorf("days must be between 1 and %d", doses.MaxSeriesDays)
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// StartAddDose opens the dose form for the focused patient.
func StartAddDose(m *state.Model) tea.Cmd {
	if _, ok := m.CurrentPatient(); !ok {
		m.StatusMessage = "Add a patient first"
		return nil
	}
	m.DoseForm = &state.DoseFormModel{Date: m.Today.String(), Days: "1"}
	m.Form = NewDoseForm(m.DoseForm)
	m.PreviousState = m.State
	m.State = constants.StateAddDose
	return m.Form.Init()
}

// HandleAddDoseState handles the add dose form state
func HandleAddDoseState(m *state.Model, msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.State = m.PreviousState
		return nil
	}

	form, cmd := m.Form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.Form = f
	}
	cmds = append(cmds, cmd)

	switch m.Form.State {
	case huh.StateCompleted:
		added, err := SaveDoseForm(m, time.Now())
		if err != nil {
			m.StatusMessage = "Error: " + err.Error()
		} else {
			setStatus(m, m.Refresh(), fmt.Sprintf("Scheduled %d dose(s)", added))
		}
		m.State = m.PreviousState
	case huh.StateAborted:
		m.State = m.PreviousState
	}
	return tea.Batch(cmds...)
}

// SaveDoseForm stores the doses described by the form and returns how many were added.
func SaveDoseForm(m *state.Model, now time.Time) (int, error) {
	patient, ok := m.CurrentPatient()
	if !ok {
		return 0, fmt.Errorf("no patient selected")
	}
	fm := m.DoseForm
	start, err := adherence.ParseDate(strings.TrimSpace(fm.Date))
	if err != nil {
		return 0, err
	}
	days, err := strconv.Atoi(strings.TrimSpace(fm.Days))
	if err != nil {
		return 0, fmt.Errorf("invalid number of days: %w", err)
	}

	series := doses.Series(patient.ID, strings.TrimSpace(fm.Medication), start, strings.TrimSpace(fm.Time), days, now)
	if err := validateAll(series); err != nil {
		return 0, err
	}
	for _, d := range series {
		if err := m.Store.AddDose(d); err != nil {
			return 0, fmt.Errorf("failed to add dose for %s: %w", d.ScheduledDate, err)
		}
	}
	return len(series), nil
}

func validateAll(series []models.Dose) error {
	for _, d := range series {
		if err := validation.ValidateDose(d); err != nil {
			return err
		}
	}
	return nil
}
