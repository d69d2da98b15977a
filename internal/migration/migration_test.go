package migration

import (
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

// setupTestMigrations builds an in-memory migrations directory from name -> SQL.
func setupTestMigrations(t *testing.T, files map[string]string) fs.FS {
	t.Helper()
	mfs := fstest.MapFS{}
	for name, content := range files {
		mfs[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return mfs
}

func setupSQLiteTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewRunnerRejectsUnknownDriver(t *testing.T) {
	db := setupSQLiteTestDB(t)
	if _, err := NewRunner(db, fstest.MapFS{}, "mysql"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestPlaceholder(t *testing.T) {
	db := setupSQLiteTestDB(t)
	sqliteRunner, _ := NewRunner(db, fstest.MapFS{}, DriverSQLite)
	pgRunner, _ := NewRunner(db, fstest.MapFS{}, DriverPostgres)

	if got := sqliteRunner.placeholder(1); got != "?" {
		t.Errorf("sqlite placeholder = %q, want ?", got)
	}
	if got := pgRunner.placeholder(2); got != "$2" {
		t.Errorf("postgres placeholder = %q, want $2", got)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	db := setupSQLiteTestDB(t)

	tests := []struct {
		name      string
		files     map[string]string
		wantCount int
		wantErr   string
	}{
		{
			name: "sorted by version",
			files: map[string]string{
				"002_doses.sql":    "SELECT 2;",
				"001_patients.sql": "SELECT 1;",
				"README.md":        "ignored",
			},
			wantCount: 2,
		},
		{
			name:    "missing underscore",
			files:   map[string]string{"001.sql": "SELECT 1;"},
			wantErr: "invalid migration filename",
		},
		{
			name:    "non-numeric version",
			files:   map[string]string{"abc_init.sql": "SELECT 1;"},
			wantErr: "invalid version number",
		},
		{
			name:    "zero version",
			files:   map[string]string{"000_init.sql": "SELECT 1;"},
			wantErr: "must be at least 1",
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"001_a.sql":  "SELECT 1;",
				"0001_b.sql": "SELECT 1;",
			},
			wantErr: "duplicate migration version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, err := NewRunner(db, setupTestMigrations(t, tt.files), DriverSQLite)
			if err != nil {
				t.Fatalf("NewRunner() failed: %v", err)
			}
			migrations, err := runner.ReadMigrationFiles()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadMigrationFiles() failed: %v", err)
			}
			if len(migrations) != tt.wantCount {
				t.Fatalf("expected %d migrations, got %d", tt.wantCount, len(migrations))
			}
			if migrations[0].Version != 1 || migrations[0].Name != "patients" {
				t.Errorf("unexpected first migration %+v", migrations[0])
			}
		})
	}
}

func TestSQLiteApplyMigrations(t *testing.T) {
	db := setupSQLiteTestDB(t)
	runner, err := NewRunner(db, setupTestMigrations(t, map[string]string{
		"001_patients.sql": "CREATE TABLE patients (id TEXT PRIMARY KEY, name TEXT NOT NULL);",
		"002_doses.sql":    "CREATE TABLE doses (id TEXT PRIMARY KEY, patient_id TEXT NOT NULL REFERENCES patients(id));",
	}), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner() failed: %v", err)
	}

	pending, err := runner.Pending()
	if err != nil || pending != 2 {
		t.Fatalf("Pending() = %d, %v; want 2", pending, err)
	}

	var logged []string
	count, err := runner.ApplyMigrations(func(msg string) { logged = append(logged, msg) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 migrations applied, got %d", count)
	}
	if len(logged) == 0 {
		t.Error("expected progress messages")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil || version != 2 {
		t.Errorf("GetCurrentVersion() = %d, %v; want 2", version, err)
	}

	if _, err := db.Exec("INSERT INTO patients (id, name) VALUES ('p1', 'Ada')"); err != nil {
		t.Errorf("patients table not usable: %v", err)
	}

	count, err = runner.ApplyMigrations(nil)
	if err != nil || count != 0 {
		t.Errorf("second ApplyMigrations() = %d, %v; want 0, nil", count, err)
	}
	if err := runner.ValidateVersion(); err != nil {
		t.Errorf("ValidateVersion() unexpected error: %v", err)
	}
}

func TestSQLiteMigrationRollbackOnError(t *testing.T) {
	db := setupSQLiteTestDB(t)
	runner, err := NewRunner(db, setupTestMigrations(t, map[string]string{
		"001_init.sql": "CREATE TABLE patients (id TEXT PRIMARY KEY);",
		"002_bad.sql":  "CREATE TABLE doses (id TEXT PRIMARY KEY); THIS IS INVALID SQL;",
	}), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner() failed: %v", err)
	}

	count, err := runner.ApplyMigrations(nil)
	if err == nil {
		t.Fatal("ApplyMigrations should have failed with invalid SQL")
	}
	if count != 1 {
		t.Errorf("expected the first migration to stay applied, got %d", count)
	}

	version, err := runner.GetCurrentVersion()
	if err != nil || version != 1 {
		t.Errorf("GetCurrentVersion() = %d, %v; want 1", version, err)
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	db := setupSQLiteTestDB(t)
	runner, err := NewRunner(db, setupTestMigrations(t, map[string]string{
		"001_init.sql": "CREATE TABLE patients (id TEXT PRIMARY KEY);",
	}), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner() failed: %v", err)
	}

	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion() failed: %v", err)
	}
	if err := runner.ValidateVersion(); err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("expected newer-version error, got %v", err)
	}
	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Error("ApplyMigrations should refuse a newer database")
	}
}
