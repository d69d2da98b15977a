package system

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/medlog/internal/cli"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/storage/sqlite"
)

// fixedNow is 2024-06-15 09:00 UTC.
var fixedNow = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

// setupTestContext returns a context over an uninitialized sqlite store whose
// output goes to the returned buffer.
func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	var out bytes.Buffer
	ctx := &cli.Context{
		Store:    store,
		Timezone: "UTC",
		Stdout:   &out,
		Now:      func() time.Time { return fixedNow },
	}
	return ctx, &out, dbPath
}

// setupInitializedContext is setupTestContext with Init already run.
func setupInitializedContext(t *testing.T) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	ctx, out, dbPath := setupTestContext(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return ctx, out, dbPath
}

func addPatient(t *testing.T, ctx *cli.Context, id, name string) models.Patient {
	t.Helper()
	p := models.Patient{ID: id, Name: name, CreatedAt: fixedNow}
	if err := ctx.Store.AddPatient(p); err != nil {
		t.Fatalf("AddPatient(%s) error = %v", name, err)
	}
	return p
}

func addDose(t *testing.T, ctx *cli.Context, id, patientID, med, day, at string, status constants.DoseStatus) models.Dose {
	t.Helper()
	d := models.Dose{
		ID:             id,
		PatientID:      patientID,
		MedicationName: med,
		ScheduledDate:  day,
		ScheduledTime:  at,
		Status:         status,
		CreatedAt:      fixedNow,
		UpdatedAt:      fixedNow,
	}
	if err := ctx.Store.AddDose(d); err != nil {
		t.Fatalf("AddDose(%s) error = %v", id, err)
	}
	return d
}
