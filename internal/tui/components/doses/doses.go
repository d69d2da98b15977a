package doses

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
)

type TakeDoseMsg struct {
	ID string
}

type MissDoseMsg struct {
	ID string
}

type UndoDoseMsg struct {
	ID string
}

type Item struct {
	Dose models.Dose
}

func (i Item) Title() string {
	switch i.Dose.Status {
	case constants.DoseStatusTaken:
		return "✓ " + i.Dose.MedicationName
	case constants.DoseStatusMissed:
		return "✗ " + i.Dose.MedicationName
	default:
		return "○ " + i.Dose.MedicationName
	}
}

func (i Item) Description() string {
	at := "any time"
	if i.Dose.HasTime() {
		at = i.Dose.ScheduledTime
	}
	return fmt.Sprintf("%s · %s", at, i.Dose.Status)
}

func (i Item) FilterValue() string { return i.Dose.MedicationName }

type KeyMap struct {
	Take key.Binding
	Miss key.Binding
	Undo key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Take: key.NewBinding(
			key.WithKeys("t", " "),
			key.WithHelp("t/space", "take"),
		),
		Miss: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark missed"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo"),
		),
	}
}

// Model lists one patient's doses for a single day.
type Model struct {
	list list.Model
	keys KeyMap
	day  adherence.Date
}

func New(doses []models.Dose, day adherence.Date, width, height int) Model {
	l := list.New(toItems(doses), list.NewDefaultDelegate(), width, height)
	l.Title = "Today's doses"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Take, keys.Miss, keys.Undo}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Take, keys.Miss, keys.Undo}
	}

	return Model{list: l, keys: keys, day: day}
}

func toItems(doses []models.Dose) []list.Item {
	sorted := adherence.SortForDisplay(doses)
	items := make([]list.Item, len(sorted))
	for i, d := range sorted {
		items[i] = Item{Dose: d}
	}
	return items
}

func (m *Model) SetDoses(doses []models.Dose, day adherence.Date) {
	m.day = day
	m.list.SetItems(toItems(doses))
}

func (m Model) Keys() KeyMap {
	return m.keys
}

// Selected returns the highlighted dose.
func (m Model) Selected() (models.Dose, bool) {
	i, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.Dose{}, false
	}
	return i.Dose, true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Take):
			if d, ok := m.Selected(); ok && d.Status == constants.DoseStatusPending {
				return m, func() tea.Msg { return TakeDoseMsg{ID: d.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Miss):
			if d, ok := m.Selected(); ok && d.Status == constants.DoseStatusPending {
				return m, func() tea.Msg { return MissDoseMsg{ID: d.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Undo):
			if d, ok := m.Selected(); ok && d.Status != constants.DoseStatusPending {
				return m, func() tea.Msg { return UndoDoseMsg{ID: d.ID} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return fmt.Sprintf("\n  No doses scheduled for %s.", m.day)
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
