package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/models"
)

// Collector holds per-patient adherence gauges on a private registry so they
// can be written as a node_exporter textfile.
type Collector struct {
	registry *prometheus.Registry

	AdherenceRate  *prometheus.GaugeVec
	MonthlyRate    *prometheus.GaugeVec
	CurrentStreak  *prometheus.GaugeVec
	Doses          *prometheus.GaugeVec
	TodayStatus    *prometheus.GaugeVec
	LastSummarized *prometheus.GaugeVec
}

func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		AdherenceRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "adherence",
			Name:      "rate_percent",
			Help:      "Share of doses marked taken, 0-100.",
		}, []string{"patient"}),

		MonthlyRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "adherence",
			Name:      "completion_rate_percent",
			Help:      "Share of actionable days fully taken over the completion window, 0-100.",
		}, []string{"patient"}),

		CurrentStreak: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "adherence",
			Name:      "streak_days",
			Help:      "Consecutive fully taken days ending at the reference date.",
		}, []string{"patient"}),

		Doses: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "adherence",
			Name:      "doses",
			Help:      "Dose counts by derived state (completed, missed, pending).",
		}, []string{"patient", "state"}),

		TodayStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "adherence",
			Name:      "today_status",
			Help:      "1 for the current day status of the patient, 0 otherwise.",
		}, []string{"patient", "status"}),

		LastSummarized: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "adherence",
			Name:      "reference_date_seconds",
			Help:      "Unix time of the reference date the gauges were computed for.",
		}, []string{"patient"}),
	}

	c.registry.MustRegister(
		c.AdherenceRate,
		c.MonthlyRate,
		c.CurrentStreak,
		c.Doses,
		c.TodayStatus,
		c.LastSummarized,
	)
	return c
}

// Observe records one patient's summary.
func (c *Collector) Observe(patient models.Patient, s adherence.Summary) {
	name := patient.Name

	c.AdherenceRate.WithLabelValues(name).Set(float64(s.AdherenceRate))
	c.MonthlyRate.WithLabelValues(name).Set(float64(s.MonthlyRate))
	c.CurrentStreak.WithLabelValues(name).Set(float64(s.CurrentStreak))

	c.Doses.WithLabelValues(name, "completed").Set(float64(s.CompletedCount))
	c.Doses.WithLabelValues(name, "missed").Set(float64(s.MissedCount))
	c.Doses.WithLabelValues(name, "pending").Set(float64(s.PendingCount))

	for _, status := range adherence.AllDayStatuses() {
		v := 0.0
		if status == s.TodayStatus {
			v = 1
		}
		c.TodayStatus.WithLabelValues(name, status.String()).Set(v)
	}

	c.LastSummarized.WithLabelValues(name).Set(float64(s.ReferenceDate.Time(time.UTC).Unix()))
}

// WriteTextfile atomically writes every gauge to path in the Prometheus text format.
func (c *Collector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
