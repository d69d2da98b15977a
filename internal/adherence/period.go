package adherence

import (
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
)

// PeriodStats is the day-level completion result for a window.
type PeriodStats struct {
	Window         Window `json:"window" yaml:"window"`
	CompletedDays  int    `json:"completed_days" yaml:"completed_days"`
	ActionableDays int    `json:"actionable_days" yaml:"actionable_days"`
	Rate           int    `json:"rate" yaml:"rate"`
}

// AggregatePeriod computes the day-level completion rate over w. Days without
// actionable doses (NoDoses, Scheduled) count in neither numerator nor denominator.
// Rate comes from Percent, so it is 100 only when every actionable day is fully
// taken: 199 of 200 days reports 99, not the rounded 100.
func AggregatePeriod(idx *Index, w Window, today Date) PeriodStats {
	stats := PeriodStats{Window: w}
	if w.Empty() {
		return stats
	}

	for _, day := range idx.days {
		if !w.Contains(day) {
			continue
		}
		status := idx.Classify(day, today)
		if !status.Actionable() {
			continue
		}
		stats.ActionableDays++
		if status == FullyTaken {
			stats.CompletedDays++
		}
	}
	stats.Rate = Percent(stats.CompletedDays, stats.ActionableDays)
	return stats
}

// DoseRate is the dose-level adherence rate: the share of all doses marked
// taken, rounded to the nearest whole percent. An empty list yields 0.
func DoseRate(doses []models.Dose) int {
	taken := 0
	for _, d := range doses {
		if d.Status == constants.DoseStatusTaken {
			taken++
		}
	}
	return Percent(taken, len(doses))
}

// Percent returns round(100*part/whole) with halves rounded up, or 0 when whole is 0.
// The result is 100 only when part == whole; anything short of that tops out at 99.
func Percent(part, whole int) int {
	if whole <= 0 || part <= 0 {
		return 0
	}
	pct := (200*part + whole) / (2 * whole)
	if pct >= 100 && part < whole {
		return 99
	}
	return pct
}
