package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/cli"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/storage"
)

// loadDoses resolves the patient and reads every active dose. Statistics are
// always derived from the full list, never patched incrementally.
func loadDoses(ctx *cli.Context, ref string) (models.Patient, []models.Dose, error) {
	patient, err := storage.ResolvePatient(ctx.Store, ref)
	if err != nil {
		return models.Patient{}, nil, err
	}
	doses, err := ctx.Store.GetAllDosesForPatient(patient.ID)
	if err != nil {
		return models.Patient{}, nil, fmt.Errorf("failed to get doses: %w", err)
	}
	return patient, doses, nil
}

type summaryOutput struct {
	Patient string `json:"patient" yaml:"patient"`
	adherence.Summary `yaml:",inline"`
}

type StatsSummaryCmd struct {
	Patient string                 `short:"p" help:"Patient name or ID." required:""`
	Date    string                 `short:"d" help:"Reference date (YYYY-MM-DD). Defaults to today."`
	Format  constants.OutputFormat `short:"f" help:"Output format (text|json|yaml)." enum:"text,json,yaml" default:"text"`
}

func (c *StatsSummaryCmd) Run(ctx *cli.Context) error {
	patient, doses, err := loadDoses(ctx, c.Patient)
	if err != nil {
		return err
	}
	ref, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}
	summary, err := engine.Summarize(doses, ref)
	if err != nil {
		return err
	}

	out := summaryOutput{Patient: patient.Name, Summary: summary}
	return cli.Render(ctx.Out(), c.Format, out, func(w io.Writer) error {
		fmt.Fprintf(w, "Adherence for %s as of %s\n\n", patient.Name, ref)
		fmt.Fprintf(w, "  Adherence rate:   %d%%\n", summary.AdherenceRate)
		fmt.Fprintf(w, "  Monthly rate:     %d%%\n", summary.MonthlyRate)
		fmt.Fprintf(w, "  Current streak:   %s\n", plural(summary.CurrentStreak, "day"))
		fmt.Fprintf(w, "  Today:            %s\n", StatusText(summary.TodayStatus))
		fmt.Fprintf(w, "  Completed doses:  %d\n", summary.CompletedCount)
		fmt.Fprintf(w, "  Missed doses:     %d\n", summary.MissedCount)
		fmt.Fprintf(w, "  Pending doses:    %d\n", summary.PendingCount)
		return nil
	})
}

type dayOutput struct {
	Patient string              `json:"patient" yaml:"patient"`
	Date    adherence.Date      `json:"date" yaml:"date"`
	Status  adherence.DayStatus `json:"status" yaml:"status"`
	Marker  adherence.Marker    `json:"marker" yaml:"marker"`
	Doses   []models.Dose       `json:"doses" yaml:"doses"`
}

type StatsDayCmd struct {
	Patient string                 `short:"p" help:"Patient name or ID." required:""`
	Date    string                 `short:"d" help:"Day to classify (YYYY-MM-DD). Defaults to today."`
	Format  constants.OutputFormat `short:"f" help:"Output format (text|json|yaml)." enum:"text,json,yaml" default:"text"`
}

func (c *StatsDayCmd) Run(ctx *cli.Context) error {
	patient, err := storage.ResolvePatient(ctx.Store, c.Patient)
	if err != nil {
		return err
	}
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}
	today, err := ctx.Today()
	if err != nil {
		return err
	}

	doses, err := ctx.Store.GetDosesForDay(patient.ID, day.String())
	if err != nil {
		return fmt.Errorf("failed to get doses: %w", err)
	}
	status, err := adherence.ClassifyDay(doses, day, today)
	if err != nil {
		return err
	}
	doses = adherence.SortForDisplay(doses)

	out := dayOutput{Patient: patient.Name, Date: day, Status: status, Marker: adherence.MarkerFor(status), Doses: doses}
	return cli.Render(ctx.Out(), c.Format, out, func(w io.Writer) error {
		fmt.Fprintf(w, "%s on %s: %s\n", patient.Name, day, StatusText(status))
		for _, d := range doses {
			at := d.ScheduledTime
			if at == "" {
				at = "--:--"
			}
			fmt.Fprintf(w, "  %s  %-7s  %s\n", at, d.Status, d.MedicationName)
		}
		return nil
	})
}

type StatsStreakCmd struct {
	Patient  string `short:"p" help:"Patient name or ID." required:""`
	Date     string `short:"d" help:"Reference date (YYYY-MM-DD). Defaults to today."`
	Lookback *int   `help:"Maximum number of days to look back. Defaults to the streak_lookback_days setting."`
}

func (c *StatsStreakCmd) Run(ctx *cli.Context) error {
	patient, doses, err := loadDoses(ctx, c.Patient)
	if err != nil {
		return err
	}
	ref, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}

	lookback := 0
	if c.Lookback != nil {
		lookback = *c.Lookback
	} else {
		settings, err := ctx.Settings()
		if err != nil {
			return err
		}
		lookback = settings.StreakLookbackDays
	}
	calc, err := adherence.NewStreakCalculator(lookback)
	if err != nil {
		return err
	}
	idx, err := adherence.NewIndex(doses)
	if err != nil {
		return err
	}

	streak := calc.Current(idx, ref)
	ctx.Printf("%s: %s as of %s", patient.Name, plural(streak, "day"), ref)
	if streak == calc.Lookback() {
		ctx.Printf(" (lookback limit reached)")
	}
	ctx.Println()
	return nil
}

type StatsPeriodCmd struct {
	Patient string                 `short:"p" help:"Patient name or ID." required:""`
	From    string                 `help:"First day of the window (YYYY-MM-DD)."`
	To      string                 `help:"Last day of the window (YYYY-MM-DD). Defaults to today."`
	Days    int                    `short:"n" help:"Window length in days ending at --to, used when --from is not set. Defaults to the completion_window_days setting."`
	Format  constants.OutputFormat `short:"f" help:"Output format (text|json|yaml)." enum:"text,json,yaml" default:"text"`
}

type periodOutput struct {
	Patient               string `json:"patient" yaml:"patient"`
	adherence.PeriodStats `yaml:",inline"`
	DoseRate              int `json:"dose_rate" yaml:"dose_rate"`
	Doses                 int `json:"doses" yaml:"doses"`
}

func (c *StatsPeriodCmd) Run(ctx *cli.Context) error {
	patient, err := storage.ResolvePatient(ctx.Store, c.Patient)
	if err != nil {
		return err
	}
	today, err := ctx.Today()
	if err != nil {
		return err
	}
	end, err := ctx.Day(c.To)
	if err != nil {
		return err
	}

	var window adherence.Window
	if c.From != "" {
		start, err := adherence.ParseDate(c.From)
		if err != nil {
			return err
		}
		window = adherence.Window{Start: start, End: end}
	} else {
		days := c.Days
		if days == 0 {
			settings, err := ctx.Settings()
			if err != nil {
				return err
			}
			days = settings.CompletionWindowDays
		}
		window = adherence.TrailingWindow(end, days)
	}

	var doses []models.Dose
	if !window.Empty() {
		doses, err = ctx.Store.GetDosesForPatient(patient.ID, window.Start.String(), window.End.String())
		if err != nil {
			return fmt.Errorf("failed to get doses: %w", err)
		}
	}
	idx, err := adherence.NewIndex(doses)
	if err != nil {
		return err
	}

	out := periodOutput{
		Patient:     patient.Name,
		PeriodStats: adherence.AggregatePeriod(idx, window, today),
		DoseRate:    adherence.DoseRate(doses),
		Doses:       len(doses),
	}
	return cli.Render(ctx.Out(), c.Format, out, func(w io.Writer) error {
		if window.Empty() {
			fmt.Fprintf(w, "%s: empty window (%s after %s)\n", patient.Name, window.Start, window.End)
			return nil
		}
		fmt.Fprintf(w, "%s from %s to %s\n\n", patient.Name, window.Start, window.End)
		fmt.Fprintf(w, "  Completion rate (days):  %d%% (%d of %d actionable days)\n",
			out.Rate, out.CompletedDays, out.ActionableDays)
		fmt.Fprintf(w, "  Adherence rate (doses):  %d%% of %s\n", out.DoseRate, plural(out.Doses, "dose"))
		return nil
	})
}

type StatsCalendarCmd struct {
	Patient string                 `short:"p" help:"Patient name or ID." required:""`
	Month   string                 `short:"m" help:"Month to show (YYYY-MM). Defaults to the current month."`
	Format  constants.OutputFormat `short:"f" help:"Output format (text|json|yaml)." enum:"text,json,yaml" default:"text"`
}

func (c *StatsCalendarCmd) Run(ctx *cli.Context) error {
	patient, err := storage.ResolvePatient(ctx.Store, c.Patient)
	if err != nil {
		return err
	}
	today, err := ctx.Today()
	if err != nil {
		return err
	}

	year, month := today.Year(), today.Month()
	if c.Month != "" {
		t, err := time.Parse("2006-01", c.Month)
		if err != nil {
			return fmt.Errorf("%w: month %q (expected YYYY-MM)", adherence.ErrInvalidDate, c.Month)
		}
		year, month = t.Year(), t.Month()
	}
	window := adherence.MonthWindow(year, month)

	doses, err := ctx.Store.GetDosesForPatient(patient.ID, window.Start.String(), window.End.String())
	if err != nil {
		return fmt.Errorf("failed to get doses: %w", err)
	}
	idx, err := adherence.NewIndex(doses)
	if err != nil {
		return err
	}
	markers := adherence.Annotate(idx, window, today)

	return cli.Render(ctx.Out(), c.Format, markers, func(w io.Writer) error {
		fmt.Fprintf(w, "%s, %s %d\n\n", patient.Name, month, year)
		return WriteCalendar(w, markers)
	})
}

// markerGlyphs is the text rendering of each calendar marker.
var markerGlyphs = map[adherence.Marker]string{
	adherence.MarkerNone:         "·",
	adherence.MarkerTaken:        "✓",
	adherence.MarkerPartial:      "◐",
	adherence.MarkerMissed:       "✗",
	adherence.MarkerPendingToday: "•",
}

// WriteCalendar prints markers as a Sunday-first month grid. markers must be
// consecutive days.
func WriteCalendar(w io.Writer, markers []adherence.DayMarker) error {
	if len(markers) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(" Su   Mo   Tu   We   Th   Fr   Sa\n")

	col := int(markers[0].Date.Weekday())
	b.WriteString(strings.Repeat("     ", col))
	for _, m := range markers {
		fmt.Fprintf(&b, "%2d%s  ", m.Date.Day(), markerGlyphs[m.Marker])
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}
	b.WriteString("\n✓ taken  ◐ partial  ✗ missed  • pending today  · nothing due\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// StatusText is the human readable form of a day status.
func StatusText(s adherence.DayStatus) string {
	switch s {
	case adherence.FullyTaken:
		return "all doses taken"
	case adherence.PartiallyTaken:
		return "partially taken"
	case adherence.Missed:
		return "missed"
	case adherence.PendingToday:
		return "doses pending"
	case adherence.Scheduled:
		return "scheduled"
	default:
		return "no doses"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
