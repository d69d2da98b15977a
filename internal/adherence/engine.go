package adherence

import (
	"fmt"

	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
)

// Summary is the statistics bundle shown on both dashboards. It is derived
// from a dose list on every call and never stored.
type Summary struct {
	ReferenceDate  Date      `json:"reference_date" yaml:"reference_date"`
	AdherenceRate  int       `json:"adherence_rate" yaml:"adherence_rate"` // dose-level, 0-100
	CurrentStreak  int       `json:"current_streak" yaml:"current_streak"`
	MissedCount    int       `json:"missed_count" yaml:"missed_count"`
	CompletedCount int       `json:"completed_count" yaml:"completed_count"`
	PendingCount   int       `json:"pending_count" yaml:"pending_count"`
	TodayStatus    DayStatus `json:"today_status" yaml:"today_status"`
	MonthlyRate    int       `json:"monthly_rate" yaml:"monthly_rate"` // day-level over the completion window
}

// Config tunes an Engine. A zero field means "use the default":
// constants.DefaultStreakLookbackDays and constants.DefaultCompletionWindowDays.
// Only negative values are rejected, unlike NewStreakCalculator, which takes
// the bound literally and refuses zero.
type Config struct {
	StreakLookbackDays   int
	CompletionWindowDays int
}

// Engine is the single entry point for adherence statistics. It holds only
// its configuration, so one Engine may be shared across goroutines.
type Engine struct {
	streak     *StreakCalculator
	windowDays int
}

// New validates cfg and builds an Engine. Zero fields take their defaults;
// negative values fail with ErrInvalidConfiguration.
func New(cfg Config) (*Engine, error) {
	lookback := cfg.StreakLookbackDays
	if lookback == 0 {
		lookback = constants.DefaultStreakLookbackDays
	}
	streak, err := NewStreakCalculator(lookback)
	if err != nil {
		return nil, err
	}

	window := cfg.CompletionWindowDays
	if window == 0 {
		window = constants.DefaultCompletionWindowDays
	}
	if window < 0 {
		return nil, fmt.Errorf("%w: completion window must be positive, got %d", ErrInvalidConfiguration, window)
	}

	return &Engine{streak: streak, windowDays: window}, nil
}

// Default returns an Engine with the default configuration.
func Default() *Engine {
	return &Engine{
		streak:     DefaultStreakCalculator(),
		windowDays: constants.DefaultCompletionWindowDays,
	}
}

// Summarize derives the dashboard statistics for doses as seen on ref.
// It does not modify doses and returns identical output for identical input.
func (e *Engine) Summarize(doses []models.Dose, ref Date) (Summary, error) {
	idx, err := NewIndex(doses)
	if err != nil {
		return Summary{}, err
	}
	return e.SummarizeIndex(idx, ref), nil
}

// SummarizeIndex is Summarize for an already built index.
func (e *Engine) SummarizeIndex(idx *Index, ref Date) Summary {
	s := Summary{
		ReferenceDate: ref,
		TodayStatus:   idx.Classify(ref, ref),
		CurrentStreak: e.streak.Current(idx, ref),
		MonthlyRate:   AggregatePeriod(idx, TrailingWindow(ref, e.windowDays), ref).Rate,
	}

	total := 0
	for _, day := range idx.days {
		for _, d := range idx.byDay[day] {
			total++
			switch d.Status {
			case constants.DoseStatusTaken:
				s.CompletedCount++
			case constants.DoseStatusMissed:
				if !day.After(ref) {
					s.MissedCount++
				}
			case constants.DoseStatusPending:
				if day.Before(ref) {
					s.MissedCount++
				} else {
					s.PendingCount++
				}
			}
		}
	}
	s.AdherenceRate = Percent(s.CompletedCount, total)
	return s
}

// Streak returns the current streak for doses as seen on ref.
func (e *Engine) Streak(doses []models.Dose, ref Date) (int, error) {
	idx, err := NewIndex(doses)
	if err != nil {
		return 0, err
	}
	return e.streak.Current(idx, ref), nil
}

// CompletionWindow returns the trailing completion window ending at ref.
func (e *Engine) CompletionWindow(ref Date) Window {
	return TrailingWindow(ref, e.windowDays)
}

// Period returns day-level completion stats for doses over w as seen on today.
func (e *Engine) Period(doses []models.Dose, w Window, today Date) (PeriodStats, error) {
	idx, err := NewIndex(doses)
	if err != nil {
		return PeriodStats{}, err
	}
	return AggregatePeriod(idx, w, today), nil
}

// Calendar returns per-day markers for doses over w as seen on today.
func (e *Engine) Calendar(doses []models.Dose, w Window, today Date) ([]DayMarker, error) {
	idx, err := NewIndex(doses)
	if err != nil {
		return nil, err
	}
	return Annotate(idx, w, today), nil
}

// Summarize runs the default Engine.
func Summarize(doses []models.Dose, ref Date) (Summary, error) {
	return Default().Summarize(doses, ref)
}
