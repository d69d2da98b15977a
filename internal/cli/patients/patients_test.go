package patients

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/medlog/internal/cli"
	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
	"github.com/julianstephens/medlog/internal/storage"
	"github.com/julianstephens/medlog/internal/storage/sqlite"
)

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

	var out bytes.Buffer
	return &cli.Context{Store: store, Stdout: &out}, &out
}

func ptr[T any](v T) *T { return &v }

func TestPatientAddCmd_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     PatientAddCmd
		wantErr bool
	}{
		{name: "valid", cmd: PatientAddCmd{Name: "Ada"}},
		{name: "empty", cmd: PatientAddCmd{Name: ""}, wantErr: true},
		{name: "whitespace", cmd: PatientAddCmd{Name: "   "}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPatientAddCmd_Run(t *testing.T) {
	ctx, out := setupTestDB(t)

	cmd := &PatientAddCmd{Name: "  Ada  ", Email: "ada@example.com"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Added patient: Ada") {
		t.Errorf("unexpected output: %q", out.String())
	}

	p, err := ctx.Store.GetPatientByName("Ada")
	if err != nil {
		t.Fatalf("GetPatientByName() error = %v", err)
	}
	if p.Email != "ada@example.com" {
		t.Errorf("Email = %q, want ada@example.com", p.Email)
	}

	if err := (&PatientAddCmd{Name: "Ada"}).Run(ctx); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
}

func TestPatientEditCmd_Run(t *testing.T) {
	ctx, out := setupTestDB(t)
	if err := (&PatientAddCmd{Name: "Ada"}).Run(ctx); err != nil {
		t.Fatalf("add Ada: %v", err)
	}
	if err := (&PatientAddCmd{Name: "Grace"}).Run(ctx); err != nil {
		t.Fatalf("add Grace: %v", err)
	}
	out.Reset()

	if err := (&PatientEditCmd{Patient: "Ada"}).Run(ctx); err != nil {
		t.Fatalf("no-op edit error = %v", err)
	}
	if !strings.Contains(out.String(), "No changes specified") {
		t.Errorf("unexpected output: %q", out.String())
	}

	if err := (&PatientEditCmd{Patient: "Ada", Name: ptr("Grace")}).Run(ctx); err == nil {
		t.Error("expected rename onto an existing name to fail")
	}
	if err := (&PatientEditCmd{Patient: "Ada", Name: ptr(" ")}).Run(ctx); err == nil {
		t.Error("expected empty name to fail")
	}

	cmd := &PatientEditCmd{Patient: "Ada", Name: ptr("Ada L."), Email: ptr("ada@example.com")}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	p, err := ctx.Store.GetPatientByName("Ada L.")
	if err != nil {
		t.Fatalf("GetPatientByName() error = %v", err)
	}
	if p.Email != "ada@example.com" {
		t.Errorf("Email = %q", p.Email)
	}
}

func TestPatientListCmd_Run(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&PatientListCmd{}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "No patients found") {
		t.Errorf("unexpected empty output: %q", out.String())
	}

	for _, name := range []string{"Ada", "Grace"} {
		if err := (&PatientAddCmd{Name: name}).Run(ctx); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}
	out.Reset()

	if err := (&PatientListCmd{Format: constants.FormatJSON}).Run(ctx); err != nil {
		t.Fatalf("Run(json) error = %v", err)
	}
	var got []models.Patient
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %v", out.String(), err)
	}
	names := make([]string, len(got))
	for i, p := range got {
		names[i] = p.Name
	}
	if diff := cmp.Diff([]string{"Ada", "Grace"}, names); diff != "" {
		t.Errorf("patient names mismatch (-want +got):\n%s", diff)
	}
}

func TestPatientDeleteRestore(t *testing.T) {
	ctx, out := setupTestDB(t)
	if err := (&PatientAddCmd{Name: "Ada"}).Run(ctx); err != nil {
		t.Fatalf("add: %v", err)
	}
	p, err := ctx.Store.GetPatientByName("Ada")
	if err != nil {
		t.Fatalf("GetPatientByName() error = %v", err)
	}

	if err := (&PatientRestoreCmd{ID: p.ID}).Run(ctx); err == nil {
		t.Error("expected restoring an active patient to fail")
	}

	if err := (&PatientDeleteCmd{Patient: "Ada"}).Run(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out.String(), "medlog patient restore "+p.ID) {
		t.Errorf("missing restore hint: %q", out.String())
	}
	if _, err := storage.ResolvePatient(ctx.Store, "Ada"); err == nil {
		t.Error("deleted patient should not resolve")
	}

	out.Reset()
	if err := (&PatientListCmd{All: true}).Run(ctx); err != nil {
		t.Fatalf("list --all: %v", err)
	}
	if !strings.Contains(out.String(), "[deleted") {
		t.Errorf("expected deleted marker: %q", out.String())
	}

	if err := (&PatientRestoreCmd{ID: p.ID}).Run(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := storage.ResolvePatient(ctx.Store, "Ada"); err != nil {
		t.Errorf("restored patient should resolve: %v", err)
	}

	err = (&PatientRestoreCmd{ID: "missing"}).Run(ctx)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("restore missing error = %v, want ErrNotFound", err)
	}
}

func TestPatientRestore_NameTaken(t *testing.T) {
	ctx, _ := setupTestDB(t)
	if err := (&PatientAddCmd{Name: "Ada"}).Run(ctx); err != nil {
		t.Fatalf("add: %v", err)
	}
	old, _ := ctx.Store.GetPatientByName("Ada")
	if err := (&PatientDeleteCmd{Patient: old.ID}).Run(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := (&PatientAddCmd{Name: "Ada"}).Run(ctx); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	if err := (&PatientRestoreCmd{ID: old.ID}).Run(ctx); err == nil {
		t.Error("expected restore to fail while the name is taken")
	}
}
