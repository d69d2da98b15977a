package adherence

import (
	"sort"

	"github.com/julianstephens/medlog/internal/models"
)

// SortForDisplay returns a copy of doses ordered by day, then time of day,
// then medication name, then creation time. Doses without a time sort after
// timed doses on the same day; a missing time is not midnight.
func SortForDisplay(doses []models.Dose) []models.Dose {
	out := make([]models.Dose, len(doses))
	copy(out, doses)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if da, db := dayKey(a), dayKey(b); da != db {
			return da < db
		}
		if a.HasTime() != b.HasTime() {
			return a.HasTime()
		}
		if a.ScheduledTime != b.ScheduledTime {
			return a.ScheduledTime < b.ScheduledTime
		}
		if a.MedicationName != b.MedicationName {
			return a.MedicationName < b.MedicationName
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out
}

// MostRecent returns up to limit doses, newest scheduled day first.
func MostRecent(doses []models.Dose, limit int) []models.Dose {
	sorted := SortForDisplay(doses)
	out := make([]models.Dose, 0, limit)
	for i := len(sorted) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, sorted[i])
	}
	return out
}

// dayKey is the normalized day when the date is readable, the raw value otherwise.
func dayKey(d models.Dose) string {
	if day, err := ParseDate(d.ScheduledDate); err == nil {
		return day.String()
	}
	return d.ScheduledDate
}
