package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "medlog.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE doses (id TEXT PRIMARY KEY, status TEXT)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO doses (id, status) VALUES ('d1', 'taken'), ('d2', 'pending')`); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
	return dbPath
}

// steppingClock returns a clock that advances one minute per call.
func steppingClock() func() time.Time {
	current := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func countRows(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM doses").Scan(&count); err != nil {
		t.Fatalf("failed to query %s: %v", path, err)
	}
	return count
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	info, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if filepath.Dir(info.Path) != filepath.Join(filepath.Dir(dbPath), "backups") {
		t.Errorf("backup written to %s, want the backups directory", info.Path)
	}
	if info.Size == 0 {
		t.Error("backup size is 0")
	}
	if got := countRows(t, info.Path); got != 2 {
		t.Errorf("backup has %d rows, want 2", got)
	}
}

func TestCreateMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil {
		t.Fatal("Create() on a missing database should fail")
	}
}

func TestCreateSameSecond(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		if _, err := mgr.Create(); err != nil {
			t.Fatalf("Create() #%d error = %v", i, err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"medlog-20240301-080000-2.db", "medlog-20240301-080000-1.db", "medlog-20240301-080000.db"}
	if len(backups) != len(want) {
		t.Fatalf("List() returned %d backups, want %d", len(backups), len(want))
	}
	for i, b := range backups {
		if b.Name() != want[i] {
			t.Errorf("backup %d = %s, want %s", i, b.Name(), want[i])
		}
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()

	total := mgr.MaxBackups() + 5
	var newest Info
	for i := 0; i < total; i++ {
		info, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create() #%d error = %v", i, err)
		}
		newest = info
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != mgr.MaxBackups() {
		t.Errorf("kept %d backups, want %d", len(backups), mgr.MaxBackups())
	}
	if backups[0].Path != newest.Path {
		t.Errorf("newest backup = %s, want %s", backups[0].Name(), newest.Name())
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backup %d is newer than backup %d", i, i-1)
		}
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	if backups, err := mgr.List(); err != nil || len(backups) != 0 {
		t.Fatalf("List() without a backup dir = %v, %v; want empty", backups, err)
	}

	if err := os.MkdirAll(mgr.BackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "medlog-yesterday.db", "medlog-20240301-080000-x.db", "other-20240301-080000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.BackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("List() = %v, want foreign files skipped", backups)
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name    string
		wantOK  bool
		wantSeq int
	}{
		{"medlog-20240301-080000.db", true, 0},
		{"medlog-20240301-080000-3.db", true, 3},
		{"medlog-20240301-080000-0.db", false, 0},
		{"medlog-20240301.db", false, 0},
		{"medlog-20240301-080000.sql", false, 0},
		{"otherapp-20240301-080000.db", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, seq, ok := parseName(tt.name)
			if ok != tt.wantOK || seq != tt.wantSeq {
				t.Errorf("parseName() = (%d, %v), want (%d, %v)", seq, ok, tt.wantSeq, tt.wantOK)
			}
		})
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()

	snapshot, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO doses (id, status) VALUES ('d3', 'missed')`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	saved, err := mgr.Restore(snapshot.Path)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := countRows(t, dbPath); got != 2 {
		t.Errorf("restored database has %d rows, want 2", got)
	}
	if saved == nil {
		t.Fatal("Restore() did not save the current database")
	}
	if got := countRows(t, saved.Path); got != 3 {
		t.Errorf("pre-restore backup has %d rows, want 3", got)
	}
}

func TestRestoreRejectsInvalidFile(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("definitely not sqlite, just some text padding it out"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(bogus); err == nil {
		t.Fatal("Restore() of an invalid file should fail")
	}
	if got := countRows(t, dbPath); got != 2 {
		t.Errorf("database changed after failed restore: %d rows", got)
	}
}

func TestResolve(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()

	info, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := mgr.Resolve(info.Name())
	if err != nil {
		t.Fatalf("Resolve(name) error = %v", err)
	}
	if got != info.Path {
		t.Errorf("Resolve(name) = %s, want %s", got, info.Path)
	}

	got, err = mgr.Resolve(info.Path)
	if err != nil {
		t.Fatalf("Resolve(path) error = %v", err)
	}
	if got != info.Path {
		t.Errorf("Resolve(path) = %s, want %s", got, info.Path)
	}

	if _, err := mgr.Resolve("medlog-19990101-000000.db"); err == nil {
		t.Error("Resolve() of an unknown backup should fail")
	}
}
