package adherence

import (
	"testing"

	"github.com/julianstephens/medlog/internal/models"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		part, whole, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 5, 0},
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{5, 5, 100},
		{199, 200, 99},
		{1, 200, 1},
	}
	for _, tt := range tests {
		if got := Percent(tt.part, tt.whole); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.part, tt.whole, got, tt.want)
		}
	}
}

func TestDoseRate(t *testing.T) {
	tests := []struct {
		name  string
		doses []models.Dose
		want  int
	}{
		{name: "empty", doses: nil, want: 0},
		{name: "all taken", doses: []models.Dose{taken("2024-06-01"), taken("2024-06-02")}, want: 100},
		{name: "none taken", doses: []models.Dose{missed("2024-06-01"), pending("2024-06-02")}, want: 0},
		{name: "mixed", doses: []models.Dose{taken("2024-06-01"), taken("2024-06-01"), missed("2024-06-02")}, want: 67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DoseRate(tt.doses); got != tt.want {
				t.Errorf("DoseRate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAggregatePeriod(t *testing.T) {
	today := d("2024-06-10")
	idx := mustIndex(t,
		taken("2024-06-05"),
		taken("2024-06-06"), missed("2024-06-06"),
		missed("2024-06-07"),
		taken("2024-06-08"), taken("2024-06-08"),
		pending("2024-06-10"),
		pending("2024-06-12"),
		taken("2024-05-30"),
	)

	tests := []struct {
		name           string
		window         Window
		wantCompleted  int
		wantActionable int
		wantRate       int
	}{
		{
			// 06-05 full, 06-06 partial, 06-07 missed, 06-08 full, 06-10 pending today; 06-09 empty, 06-12 scheduled.
			name:           "first half of june",
			window:         Window{Start: d("2024-06-01"), End: d("2024-06-15")},
			wantCompleted:  2,
			wantActionable: 5,
			wantRate:       40,
		},
		{
			name:           "single full day",
			window:         Window{Start: d("2024-06-08"), End: d("2024-06-08")},
			wantCompleted:  1,
			wantActionable: 1,
			wantRate:       100,
		},
		{
			name:           "only days without doses",
			window:         Window{Start: d("2024-06-01"), End: d("2024-06-04")},
			wantCompleted:  0,
			wantActionable: 0,
			wantRate:       0,
		},
		{
			name:           "only future days",
			window:         Window{Start: d("2024-06-11"), End: d("2024-06-20")},
			wantCompleted:  0,
			wantActionable: 0,
			wantRate:       0,
		},
		{
			name:           "reversed window is empty",
			window:         Window{Start: d("2024-06-15"), End: d("2024-06-01")},
			wantCompleted:  0,
			wantActionable: 0,
			wantRate:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregatePeriod(idx, tt.window, today)
			if got.CompletedDays != tt.wantCompleted || got.ActionableDays != tt.wantActionable || got.Rate != tt.wantRate {
				t.Errorf("AggregatePeriod() = %d/%d (%d%%), want %d/%d (%d%%)",
					got.CompletedDays, got.ActionableDays, got.Rate,
					tt.wantCompleted, tt.wantActionable, tt.wantRate)
			}
		})
	}
}

func TestDayLevelAndDoseLevelRatesDiffer(t *testing.T) {
	// Two full days with one dose each and one partial day with four doses.
	doses := []models.Dose{
		taken("2024-06-01"),
		taken("2024-06-02"),
		taken("2024-06-03"), missed("2024-06-03"), missed("2024-06-03"), missed("2024-06-03"),
	}
	idx := mustIndex(t, doses...)
	w := Window{Start: d("2024-06-01"), End: d("2024-06-03")}

	dayRate := AggregatePeriod(idx, w, d("2024-06-10")).Rate
	doseRate := DoseRate(doses)
	if dayRate != 67 {
		t.Errorf("day-level rate = %d, want 67", dayRate)
	}
	if doseRate != 50 {
		t.Errorf("dose-level rate = %d, want 50", doseRate)
	}
}

func TestAggregatePeriodNearlyComplete(t *testing.T) {
	start := d("2024-01-01")
	var doses []models.Dose
	for i := 0; i < 199; i++ {
		doses = append(doses, taken(start.AddDays(i).String()))
	}
	doses = append(doses, missed(start.AddDays(199).String()))
	w := Window{Start: start, End: start.AddDays(199)}

	got := AggregatePeriod(mustIndex(t, doses...), w, d("2025-01-01"))
	if got.CompletedDays != 199 || got.ActionableDays != 200 {
		t.Fatalf("days = %d/%d, want 199/200", got.CompletedDays, got.ActionableDays)
	}
	if got.Rate != 99 {
		t.Errorf("Rate = %d, want 99", got.Rate)
	}
}

func TestRateIsHundredOnlyWhenEverythingTaken(t *testing.T) {
	tests := []struct {
		name    string
		doses   []models.Dose
		hundred bool
	}{
		{name: "all taken", doses: []models.Dose{taken("2024-06-01"), taken("2024-06-02")}, hundred: true},
		{name: "one of many missed", doses: append(manyTaken(250), missed("2024-06-02")), hundred: false},
		{name: "one of many pending", doses: append(manyTaken(250), pending("2024-06-02")), hundred: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := DoseRate(tt.doses)
			if rate < 0 || rate > 100 {
				t.Fatalf("rate %d out of range", rate)
			}
			if (rate == 100) != tt.hundred {
				t.Errorf("DoseRate() = %d, hundred expected %v", rate, tt.hundred)
			}
		})
	}
}

func manyTaken(n int) []models.Dose {
	out := make([]models.Dose, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, taken("2024-06-01"))
	}
	return out
}
