package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/medlog/internal/cli"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/tui/state"
)

type Model struct {
	state.Model
}

// NewModel builds the dashboard for ctx's store. patientRef picks the patient
// shown first and may be empty.
func NewModel(ctx *cli.Context, patientRef string) (Model, error) {
	s, err := state.New(ctx, patientRef)
	if err != nil {
		return Model{}, err
	}
	return Model{Model: s}, nil
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.Keys.Tab, m.Keys.NextPatient, m.Keys.Quit, m.Keys.Help}
	switch m.State {
	case constants.StatePatient:
		dk := m.DoseList.Keys()
		keys = append(keys, dk.Take, dk.Undo)
	case constants.StateCaretaker:
		keys = append(keys, m.Dashboard.Keys().Add)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.Keys.Tab, m.Keys.ShiftTab, m.Keys.NextPatient, m.Keys.PrevPatient, m.Keys.Refresh, m.Keys.Quit, m.Keys.Help}

	var actions []key.Binding
	switch m.State {
	case constants.StatePatient:
		dk := m.DoseList.Keys()
		actions = []key.Binding{dk.Take, dk.Miss, dk.Undo}
	case constants.StateCaretaker:
		ck := m.Dashboard.Keys()
		actions = []key.Binding{ck.Add, ck.PrevMonth, ck.NextMonth}
	}

	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return m.DoseList.Init()
}
