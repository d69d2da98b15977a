package handlers

import (
	"fmt"

	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/storage"
	"github.com/julianstephens/medlog/internal/tui/state"
)

// HandleSetDoseStatus applies a status change and recomputes the statistics.
func HandleSetDoseStatus(m *state.Model, id string, to constants.DoseStatus) {
	dose, err := storage.SetDoseStatus(m.Store, id, to)
	if err != nil {
		m.StatusMessage = "Error: " + err.Error()
		return
	}

	var msg string
	switch to {
	case constants.DoseStatusTaken:
		msg = fmt.Sprintf("Took %s", dose.MedicationName)
	case constants.DoseStatusMissed:
		msg = fmt.Sprintf("Marked %s missed", dose.MedicationName)
	default:
		msg = fmt.Sprintf("Reset %s to pending", dose.MedicationName)
	}
	setStatus(m, m.Refresh(), msg)
}

// HandleUndoRequest asks for confirmation before reverting a recorded dose.
func HandleUndoRequest(m *state.Model, id string) {
	m.DoseToUndoID = id
	m.PreviousState = m.State
	m.State = constants.StateConfirmUndo
}

func setStatus(m *state.Model, err error, ok string) {
	if err != nil {
		m.StatusMessage = "Error: " + err.Error()
		return
	}
	m.StatusMessage = ok
}
