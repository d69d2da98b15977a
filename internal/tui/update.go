package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/tui/components/dashboard"
	"github.com/julianstephens/medlog/internal/tui/components/doses"
	"github.com/julianstephens/medlog/internal/tui/handlers"
)

// headerHeight is the space taken by the tabs, status line and help.
const headerHeight = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.State {
	case constants.StateAddDose:
		cmd := handlers.HandleAddDoseState(&m.Model, msg)
		return m, cmd
	case constants.StateConfirmUndo:
		cmd := handlers.HandleConfirmUndoState(&m.Model, msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		m.DoseList.SetSize(msg.Width-4, msg.Height-headerHeight)
		m.Dashboard.SetSize(msg.Width-4, msg.Height-headerHeight)
		return m, nil

	case tea.KeyMsg:
		if handled, cmd := handlers.HandleGlobalKeys(&m.Model, msg); handled {
			return m, cmd
		}

	case doses.TakeDoseMsg:
		handlers.HandleSetDoseStatus(&m.Model, msg.ID, constants.DoseStatusTaken)
		return m, nil
	case doses.MissDoseMsg:
		handlers.HandleSetDoseStatus(&m.Model, msg.ID, constants.DoseStatusMissed)
		return m, nil
	case doses.UndoDoseMsg:
		handlers.HandleUndoRequest(&m.Model, msg.ID)
		return m, nil

	case dashboard.AddDoseMsg:
		return m, handlers.StartAddDose(&m.Model)
	case dashboard.ChangeMonthMsg:
		if err := m.ShiftMonth(msg.Delta); err != nil {
			m.StatusMessage = "Error: " + err.Error()
		}
		return m, nil
	}

	switch m.State {
	case constants.StatePatient:
		m.DoseList, cmd = m.DoseList.Update(msg)
	case constants.StateCaretaker:
		m.Dashboard, cmd = m.Dashboard.Update(msg)
	}
	return m, cmd
}
