package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/cli/stats"
	"github.com/julianstephens/medlog/internal/models"
)

type AddDoseMsg struct{}

// ChangeMonthMsg asks the parent to move the calendar by Delta months.
type ChangeMonthMsg struct {
	Delta int
}

type KeyMap struct {
	Add       key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add dose"),
		),
		PrevMonth: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next month"),
		),
	}
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// Model is the caretaker overview for one patient.
type Model struct {
	keys    KeyMap
	patient string
	summary adherence.Summary
	month   adherence.Window
	markers []adherence.DayMarker
	recent  []models.Dose
	width   int
	height  int
}

func New(width, height int) Model {
	return Model{keys: DefaultKeyMap(), width: width, height: height}
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m *Model) SetData(patient string, summary adherence.Summary, month adherence.Window, markers []adherence.DayMarker, recent []models.Dose) {
	m.patient = patient
	m.summary = summary
	m.month = month
	m.markers = markers
	m.recent = recent
}

// Month is the calendar window currently shown.
func (m Model) Month() adherence.Window {
	return m.month
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddDoseMsg{} }
		case key.Matches(msg, m.keys.PrevMonth):
			return m, func() tea.Msg { return ChangeMonthMsg{Delta: -1} }
		case key.Matches(msg, m.keys.NextMonth):
			return m, func() tea.Msg { return ChangeMonthMsg{Delta: 1} }
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.patient == "" {
		return "\n  No patients yet.\n  Add one with 'medlog patient add'."
	}

	panel := boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		headingStyle.Render(m.patient),
		"",
		row("Today", stats.StatusText(m.summary.TodayStatus)),
		row("Adherence", fmt.Sprintf("%d%%", m.summary.AdherenceRate)),
		row("Monthly", fmt.Sprintf("%d%%", m.summary.MonthlyRate)),
		row("Streak", fmt.Sprintf("%d day(s)", m.summary.CurrentStreak)),
		row("Taken", fmt.Sprint(m.summary.CompletedCount)),
		row("Missed", fmt.Sprint(m.summary.MissedCount)),
		row("Pending", fmt.Sprint(m.summary.PendingCount)),
	))

	var cal strings.Builder
	if len(m.markers) > 0 {
		first := m.markers[0].Date
		fmt.Fprintf(&cal, "%s %d\n\n", first.Month(), first.Year())
		_ = stats.WriteCalendar(&cal, m.markers)
	}
	calendar := boxStyle.Render(cal.String())

	top := lipgloss.JoinHorizontal(lipgloss.Top, panel, " ", calendar)
	return lipgloss.JoinVertical(lipgloss.Left, top, "", m.viewRecent())
}

func (m Model) viewRecent() string {
	lines := []string{headingStyle.Render("Recent activity")}
	if len(m.recent) == 0 {
		lines = append(lines, labelStyle.Render("  nothing recorded yet"))
	}
	for _, d := range m.recent {
		at := d.ScheduledDate
		if d.HasTime() {
			at += " " + d.ScheduledTime
		}
		lines = append(lines, fmt.Sprintf("  %-16s %-20s %s", at, d.MedicationName, d.Status))
	}
	return strings.Join(lines, "\n")
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-10s", label)) + " " + value
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
