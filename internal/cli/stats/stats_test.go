package stats

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/cli"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/storage/sqlite"
)

// fixedNow is 2024-06-15 09:00 UTC.
var fixedNow = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

// setupTestDB seeds Ada with a missed day, two taken days, and a pending
// dose today.
func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	if err := store.AddPatient(models.Patient{ID: "p1", Name: "Ada", CreatedAt: fixedNow}); err != nil {
		t.Fatalf("AddPatient() error = %v", err)
	}
	seed := []struct {
		id, day string
		status  constants.DoseStatus
	}{
		{"d1", "2024-06-12", constants.DoseStatusMissed},
		{"d2", "2024-06-13", constants.DoseStatusTaken},
		{"d3", "2024-06-14", constants.DoseStatusTaken},
		{"d4", "2024-06-15", constants.DoseStatusPending},
	}
	for _, s := range seed {
		err := store.AddDose(models.Dose{
			ID:             s.id,
			PatientID:      "p1",
			MedicationName: "Aspirin",
			ScheduledDate:  s.day,
			ScheduledTime:  "08:00",
			Status:         s.status,
			CreatedAt:      fixedNow,
			UpdatedAt:      fixedNow,
		})
		if err != nil {
			t.Fatalf("AddDose(%s) error = %v", s.id, err)
		}
	}

	var out bytes.Buffer
	return &cli.Context{
		Store:    store,
		Timezone: "UTC",
		Stdout:   &out,
		Now:      func() time.Time { return fixedNow },
	}, &out
}

func decode(t *testing.T, out *bytes.Buffer) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %v", out.String(), err)
	}
	return got
}

func TestStatsSummaryCmd(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&StatsSummaryCmd{Patient: "Ada", Format: constants.FormatJSON}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := decode(t, out)
	want := map[string]any{
		"patient":         "Ada",
		"reference_date":  "2024-06-15",
		"adherence_rate":  float64(50),
		"current_streak":  float64(2),
		"missed_count":    float64(1),
		"completed_count": float64(2),
		"pending_count":   float64(1),
		"today_status":    "pending_today",
		"monthly_rate":    float64(50),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestStatsSummaryCmd_ReferenceDate(t *testing.T) {
	ctx, out := setupTestDB(t)

	// Seen from the 16th, today's pending dose has become a miss.
	if err := (&StatsSummaryCmd{Patient: "p1", Date: "2024-06-16", Format: constants.FormatJSON}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := decode(t, out)
	if got["missed_count"] != float64(2) || got["pending_count"] != float64(0) {
		t.Errorf("unexpected counts: %v", got)
	}
	if got["current_streak"] != float64(0) || got["today_status"] != "no_doses" {
		t.Errorf("unexpected streak/status: %v", got)
	}
}

func TestStatsSummaryCmd_Text(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&StatsSummaryCmd{Patient: "Ada"}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, want := range []string{"Adherence for Ada as of 2024-06-15", "50%", "2 days", "doses pending"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestStatsDayCmd(t *testing.T) {
	ctx, out := setupTestDB(t)

	tests := []struct {
		day        string
		wantStatus string
		wantMarker string
	}{
		{"2024-06-12", "missed", "missed"},
		{"2024-06-13", "fully_taken", "taken"},
		{"2024-06-15", "pending_today", "pendingToday"},
		{"2024-06-20", "no_doses", "none"},
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			out.Reset()
			if err := (&StatsDayCmd{Patient: "Ada", Date: tt.day, Format: constants.FormatJSON}).Run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			got := decode(t, out)
			if got["status"] != tt.wantStatus || got["marker"] != tt.wantMarker {
				t.Errorf("status/marker = %v/%v, want %s/%s", got["status"], got["marker"], tt.wantStatus, tt.wantMarker)
			}
		})
	}
}

func TestStatsStreakCmd(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&StatsStreakCmd{Patient: "Ada"}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := out.String(); got != "Ada: 2 days as of 2024-06-15\n" {
		t.Errorf("output = %q", got)
	}

	out.Reset()
	one := 1
	if err := (&StatsStreakCmd{Patient: "Ada", Lookback: &one}).Run(ctx); err != nil {
		t.Fatalf("Run(lookback) error = %v", err)
	}
	if !strings.Contains(out.String(), "1 day as of 2024-06-15 (lookback limit reached)") {
		t.Errorf("output = %q", out.String())
	}

	zero := 0
	if err := (&StatsStreakCmd{Patient: "Ada", Lookback: &zero}).Run(ctx); err == nil {
		t.Error("expected a zero lookback to be rejected")
	}
}

func TestStatsPeriodCmd(t *testing.T) {
	ctx, out := setupTestDB(t)

	cmd := &StatsPeriodCmd{Patient: "Ada", From: "2024-06-12", To: "2024-06-14", Format: constants.FormatJSON}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := decode(t, out)
	if got["rate"] != float64(67) || got["dose_rate"] != float64(67) || got["doses"] != float64(3) {
		t.Errorf("unexpected period stats: %v", got)
	}
	if got["completed_days"] != float64(2) || got["actionable_days"] != float64(3) {
		t.Errorf("unexpected day counts: %v", got)
	}

	out.Reset()
	if err := (&StatsPeriodCmd{Patient: "Ada", From: "2024-06-14", To: "2024-06-12"}).Run(ctx); err != nil {
		t.Fatalf("Run(empty) error = %v", err)
	}
	if !strings.Contains(out.String(), "empty window") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := (&StatsPeriodCmd{Patient: "Ada", Days: 2, Format: constants.FormatJSON}).Run(ctx); err != nil {
		t.Fatalf("Run(days) error = %v", err)
	}
	got = decode(t, out)
	if got["actionable_days"] != float64(2) || got["completed_days"] != float64(1) {
		t.Errorf("unexpected trailing window stats: %v", got)
	}
}

func TestStatsCalendarCmd(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&StatsCalendarCmd{Patient: "Ada", Format: constants.FormatJSON}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	var markers []struct {
		Date   adherence.Date   `json:"date"`
		Marker adherence.Marker `json:"marker"`
	}
	if err := json.Unmarshal(out.Bytes(), &markers); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(markers) != 30 {
		t.Fatalf("expected 30 days in June, got %d", len(markers))
	}
	got := map[int]adherence.Marker{}
	for _, m := range markers[11:15] {
		got[m.Date.Day()] = m.Marker
	}
	want := map[int]adherence.Marker{
		12: adherence.MarkerMissed,
		13: adherence.MarkerTaken,
		14: adherence.MarkerTaken,
		15: adherence.MarkerPendingToday,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("markers mismatch (-want +got):\n%s", diff)
	}

	if err := (&StatsCalendarCmd{Patient: "Ada", Month: "June"}).Run(ctx); err == nil {
		t.Error("expected a malformed month to be rejected")
	}
}

func TestWriteCalendar(t *testing.T) {
	today := adherence.NewDate(2024, time.June, 15)
	idx, err := adherence.NewIndex(nil)
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	markers := adherence.Annotate(idx, adherence.MonthWindow(2024, time.June), today)

	var b strings.Builder
	if err := WriteCalendar(&b, markers); err != nil {
		t.Fatalf("WriteCalendar() error = %v", err)
	}
	lines := strings.Split(b.String(), "\n")
	// June 1st 2024 is a Saturday.
	if want := strings.Repeat("     ", 6) + " 1·  "; lines[1] != want {
		t.Errorf("first week = %q, want %q", lines[1], want)
	}
	if !strings.Contains(b.String(), "30·") {
		t.Errorf("missing last day:\n%s", b.String())
	}
}

func TestStatusText(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range adherence.AllDayStatuses() {
		text := StatusText(s)
		if text == "" || seen[text] {
			t.Errorf("StatusText(%v) = %q is empty or repeated", s, text)
		}
		seen[text] = true
	}
}
