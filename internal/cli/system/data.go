package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/medlog/internal/cli"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/export"
	"github.com/julianstephens/medlog/internal/metrics"
)

// ExportCmd writes every patient, dose and setting to a snapshot file.
type ExportCmd struct {
	Out    string                 `short:"o" help:"Output file. Defaults to stdout."`
	Format constants.OutputFormat `short:"f" help:"Snapshot format (json|yaml). Guessed from --out when empty."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	snap, err := export.Collect(ctx.Store)
	if err != nil {
		return err
	}

	format := c.Format
	if format == "" {
		format = export.FormatFromPath(c.Out)
	}

	if c.Out == "" {
		return export.Write(ctx.Out(), snap, format)
	}

	f, err := os.OpenFile(c.Out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Out, err)
	}
	if err := export.Write(f, snap, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	ctx.Printf("Exported %d patients and %d doses to %s\n", len(snap.Patients), len(snap.Doses), c.Out)
	return nil
}

// ImportCmd loads a snapshot written by export into the current store. The
// snapshot's settings replace the current ones and a record whose ID already
// exists stops the import.
type ImportCmd struct {
	File string `arg:"" help:"Snapshot file to import." type:"existingfile"`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.File, err)
	}
	defer f.Close()

	snap, err := export.Read(f, export.FormatFromPath(c.File))
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	stats, err := export.Apply(ctx.Store, snap)
	if err != nil {
		return err
	}
	ctx.Printf("Imported %d patients and %d doses from %s\n", stats.Patients, stats.Doses, c.File)
	return nil
}

// MetricsCmd writes every patient's adherence summary as Prometheus gauges
// for the node_exporter textfile collector.
type MetricsCmd struct {
	Out string `arg:"" help:"Textfile to write (e.g. /var/lib/node_exporter/medlog.prom)."`
}

func (c *MetricsCmd) Run(ctx *cli.Context) error {
	today, err := ctx.Today()
	if err != nil {
		return err
	}
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}
	patients, err := ctx.Store.GetAllPatients(false)
	if err != nil {
		return fmt.Errorf("failed to get patients: %w", err)
	}

	collector := metrics.NewCollector(constants.AppName)
	for _, p := range patients {
		doses, err := ctx.Store.GetAllDosesForPatient(p.ID)
		if err != nil {
			return fmt.Errorf("failed to get doses for %s: %w", p.Name, err)
		}
		summary, err := engine.Summarize(doses, today)
		if err != nil {
			return fmt.Errorf("patient %s: %w", p.Name, err)
		}
		collector.Observe(p, summary)
	}

	path, err := cli.ExpandPath(c.Out)
	if err != nil {
		return err
	}
	if err := collector.WriteTextfile(path); err != nil {
		return err
	}
	ctx.Printf("Wrote metrics for %d patient(s) to %s\n", len(patients), path)
	return nil
}
