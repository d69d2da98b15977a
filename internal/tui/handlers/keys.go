package handlers

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/tui/state"
)

// HandleGlobalKeys handles global key presses
func HandleGlobalKeys(m *state.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.Quitting = true
		return true, tea.Quit
	case key.Matches(msg, m.Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return true, nil
	case key.Matches(msg, m.Keys.Tab), key.Matches(msg, m.Keys.ShiftTab):
		// Only two main views, so both directions toggle.
		switch m.State {
		case constants.StatePatient:
			m.State = constants.StateCaretaker
		case constants.StateCaretaker:
			m.State = constants.StatePatient
		}
		return true, nil
	case key.Matches(msg, m.Keys.NextPatient):
		setStatus(m, m.SelectPatient(1), "")
		return true, nil
	case key.Matches(msg, m.Keys.PrevPatient):
		setStatus(m, m.SelectPatient(-1), "")
		return true, nil
	case key.Matches(msg, m.Keys.Refresh):
		setStatus(m, m.Refresh(), "Refreshed")
		return true, nil
	}
	return false, nil
}
