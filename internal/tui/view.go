package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/medlog/internal/cli/stats"
	"github.com/julianstephens/medlog/internal/constants"
)

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var content string
	switch m.State {
	case constants.StatePatient:
		content = m.viewPatient()
	case constants.StateCaretaker:
		content = docStyle.Render(m.Dashboard.View())
	case constants.StateAddDose:
		content = m.Form.View()
	case constants.StateConfirmUndo:
		content = m.viewConfirmUndo()
	}

	var banner string
	if m.LoadError != "" {
		banner = dangerStyle.Render("Error: " + m.LoadError)
	} else if m.ValidationWarning != "" {
		banner = bannerStyle.Render(m.ValidationWarning)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		banner,
		content,
		statusStyle.Render(m.StatusMessage),
		m.Help.View(m),
	)
}

func (m Model) viewTabs() string {
	tabs := []string{}
	for _, t := range []struct {
		title string
		state constants.SessionState
	}{
		{"Patient", constants.StatePatient},
		{"Caretaker", constants.StateCaretaker},
	} {
		if m.State == t.state {
			tabs = append(tabs, activeTabStyle.Render(t.title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.title))
		}
	}
	if p, ok := m.CurrentPatient(); ok {
		tabs = append(tabs, inactiveTabStyle.Render(fmt.Sprintf("· %s (%d/%d)", p.Name, m.PatientIdx+1, len(m.Patients))))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// viewPatient shows today's doses under a one-line summary.
func (m Model) viewPatient() string {
	if _, ok := m.CurrentPatient(); !ok {
		return docStyle.Render("No patients yet.\nAdd one with 'medlog patient add'.")
	}
	header := fmt.Sprintf("%s · %s · streak %d day(s) · %d%% this month",
		m.Today, stats.StatusText(m.Summary.TodayStatus), m.Summary.CurrentStreak, m.Summary.MonthlyRate)
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(header),
		"",
		m.DoseList.View(),
	))
}

func (m Model) viewConfirmUndo() string {
	name := m.DoseToUndoID
	if dose, err := m.Store.GetDose(m.DoseToUndoID); err == nil {
		name = fmt.Sprintf("%s on %s", dose.MedicationName, dose.ScheduledDate)
	}
	return lipgloss.Place(m.Width, m.Height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			warningStyle.Render(fmt.Sprintf("Reset %s to pending?", name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
