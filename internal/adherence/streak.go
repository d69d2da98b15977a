package adherence

import (
	"fmt"

	"github.com/julianstephens/medlog/internal/constants"
)

// StreakCalculator counts consecutive fully taken days ending at a reference day.
type StreakCalculator struct {
	lookback int
}

// NewStreakCalculator returns a calculator that examines at most lookback days.
func NewStreakCalculator(lookback int) (*StreakCalculator, error) {
	if lookback <= 0 {
		return nil, fmt.Errorf("%w: streak lookback must be positive, got %d", ErrInvalidConfiguration, lookback)
	}
	return &StreakCalculator{lookback: lookback}, nil
}

// DefaultStreakCalculator uses the standard 30 day lookback.
func DefaultStreakCalculator() *StreakCalculator {
	return &StreakCalculator{lookback: constants.DefaultStreakLookbackDays}
}

// Lookback returns the maximum number of days the calculator examines.
func (c *StreakCalculator) Lookback() int {
	return c.lookback
}

// Current walks backward from ref, treating ref as today. If ref is still
// PendingToday the walk starts at the day before, so an unfinished day does
// not zero out an existing streak. Skipping ref does not consume lookback.
func (c *StreakCalculator) Current(idx *Index, ref Date) int {
	day := ref
	if idx.Classify(ref, ref) == PendingToday {
		day = ref.AddDays(-1)
	}

	streak := 0
	for streak < c.lookback {
		if idx.Classify(day, ref) != FullyTaken {
			break
		}
		streak++
		day = day.AddDays(-1)
	}
	return streak
}
