package adherence

import (
	"fmt"
	"sort"

	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
)

// DayStatus is the aggregate classification of every dose scheduled on one day.
type DayStatus int

const (
	// NoDoses means nothing was scheduled for the day.
	NoDoses DayStatus = iota
	// FullyTaken means every dose of the day was taken.
	FullyTaken
	// PartiallyTaken means at least one dose was taken and at least one was not.
	PartiallyTaken
	// Missed means the day is in the past and none of its doses were taken.
	Missed
	// PendingToday means the day is today and none of its doses were taken yet.
	PendingToday
	// Scheduled means the day is in the future and none of its doses were taken.
	// It is not actionable and behaves like NoDoses for streaks and rates.
	Scheduled
)

var dayStatusNames = map[DayStatus]string{
	NoDoses:        "no_doses",
	FullyTaken:     "fully_taken",
	PartiallyTaken: "partially_taken",
	Missed:         "missed",
	PendingToday:   "pending_today",
	Scheduled:      "scheduled",
}

// AllDayStatuses lists every DayStatus in declaration order.
func AllDayStatuses() []DayStatus {
	return []DayStatus{NoDoses, FullyTaken, PartiallyTaken, Missed, PendingToday, Scheduled}
}

func (s DayStatus) String() string {
	if name, ok := dayStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("DayStatus(%d)", int(s))
}

func (s DayStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Actionable reports whether the day counts toward day-level rates.
func (s DayStatus) Actionable() bool {
	switch s {
	case FullyTaken, PartiallyTaken, Missed, PendingToday:
		return true
	}
	return false
}

// Index groups doses by calendar day. Build it once per dose list with
// NewIndex and query it as often as needed; it never changes after construction.
type Index struct {
	byDay map[Date][]models.Dose
	days  []Date
}

// NewIndex normalizes every dose date. It fails with ErrInvalidDate on the
// first dose whose ScheduledDate cannot be read, and returns no partial index.
// The input slice is not modified.
func NewIndex(doses []models.Dose) (*Index, error) {
	idx := &Index{byDay: make(map[Date][]models.Dose)}
	for _, d := range doses {
		day, err := ParseDate(d.ScheduledDate)
		if err != nil {
			return nil, fmt.Errorf("dose %s: %w", d.ID, err)
		}
		if _, seen := idx.byDay[day]; !seen {
			idx.days = append(idx.days, day)
		}
		idx.byDay[day] = append(idx.byDay[day], d)
	}
	sort.Slice(idx.days, func(i, j int) bool { return idx.days[i].Before(idx.days[j]) })
	return idx, nil
}

// DosesOn returns the doses scheduled on day. The returned slice must not be modified.
func (idx *Index) DosesOn(day Date) []models.Dose {
	return idx.byDay[day]
}

// Days returns every day that has at least one dose, oldest first.
func (idx *Index) Days() []Date {
	out := make([]Date, len(idx.days))
	copy(out, idx.days)
	return out
}

// Len returns the number of distinct days with doses.
func (idx *Index) Len() int {
	return len(idx.days)
}

// Classify returns the status of day when the current day is today.
func (idx *Index) Classify(day, today Date) DayStatus {
	return classify(idx.byDay[day], day, today)
}

// ClassifyDay classifies day from an arbitrary dose list. Doses scheduled on
// other days are ignored.
func ClassifyDay(doses []models.Dose, day, today Date) (DayStatus, error) {
	var onDay []models.Dose
	for _, d := range doses {
		date, err := ParseDate(d.ScheduledDate)
		if err != nil {
			return NoDoses, fmt.Errorf("dose %s: %w", d.ID, err)
		}
		if date.SameDay(day) {
			onDay = append(onDay, d)
		}
	}
	return classify(onDay, day, today), nil
}

// classify assumes every dose in doses belongs to day.
// A past day mixing missed and pending doses with nothing taken is Missed.
func classify(doses []models.Dose, day, today Date) DayStatus {
	if len(doses) == 0 {
		return NoDoses
	}

	taken := 0
	for _, d := range doses {
		if d.Status == constants.DoseStatusTaken {
			taken++
		}
	}

	switch {
	case taken == len(doses):
		return FullyTaken
	case taken > 0:
		return PartiallyTaken
	case day.SameDay(today):
		return PendingToday
	case day.Before(today):
		return Missed
	default:
		return Scheduled
	}
}
