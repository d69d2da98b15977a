package handlers

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/tui/state"
)

// HandleConfirmUndoState handles the undo confirmation state
func HandleConfirmUndoState(m *state.Model, msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "y", "Y":
			if m.DoseToUndoID != "" {
				HandleSetDoseStatus(m, m.DoseToUndoID, constants.DoseStatusPending)
				m.DoseToUndoID = ""
			}
			m.State = m.PreviousState
		case "n", "N", "esc":
			m.DoseToUndoID = ""
			m.State = m.PreviousState
		}
	}
	return nil
}
