package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func stubProcess(t *testing.T, executable string) {
	t.Helper()
	old := findProcessFunc
	t.Cleanup(func() { findProcessFunc = old })
	findProcessFunc = func(pid int) (ps.Process, error) {
		if executable == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: executable}, nil
	}
}

func TestTrayConfigDir(t *testing.T) {
	tempDir := t.TempDir()
	old := userConfigDirFunc
	t.Cleanup(func() { userConfigDirFunc = old })
	userConfigDirFunc = func() (string, error) { return tempDir, nil }

	trayDir := filepath.Join(tempDir, constants.TrayAppIdentifier)
	dir, err := TrayConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != trayDir {
		t.Errorf("expected %s, got %s", trayDir, dir)
	}

	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	settings := `{"settings": {"lockfile_dir": "/custom/medlog/dir"}}`
	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}

	dir, err = TrayConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "/custom/medlog/dir" {
		t.Errorf("expected /custom/medlog/dir, got %s", dir)
	}
}

func TestReadLockfile(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		executable string
		wantErr    bool
	}{
		{"old two part format", "8080|12345", constants.TrayProcessName, true},
		{"garbage", "invalid", constants.TrayProcessName, true},
		{"empty secret", "8080|12345|", constants.TrayProcessName, true},
		{"empty port", "|12345|s3cret", constants.TrayProcessName, true},
		{"port out of range", "99999|12345|s3cret", constants.TrayProcessName, true},
		{"bad pid", "8080|abc|s3cret", constants.TrayProcessName, true},
		{"process gone", "8080|12345|s3cret", "", true},
		{"wrong executable", "8080|12345|s3cret", "other-app", true},
		{"valid", "8080|12345|s3cret\n", constants.TrayProcessName, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubProcess(t, tt.executable)
			path := filepath.Join(t.TempDir(), constants.NotifierLockfileName)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			ep, err := readLockfile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readLockfile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (ep.port != 8080 || ep.secret != "s3cret") {
				t.Errorf("readLockfile() = %+v", ep)
			}
		})
	}

	t.Run("missing lockfile", func(t *testing.T) {
		_, err := readLockfile(filepath.Join(t.TempDir(), "absent.lock"))
		if !errors.Is(err, ErrTrayNotRunning) {
			t.Errorf("expected ErrTrayNotRunning, got %v", err)
		}
	})
}

func testEndpoint(t *testing.T, handler http.HandlerFunc) endpoint {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}
	return endpoint{port: port, secret: "test-secret"}
}

func fastNotifier() *Notifier {
	n := New()
	n.retryDelay = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	var got WebhookPayload
	ep := testEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Medlog-Secret") != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	n := fastNotifier()
	if err := n.send(context.Background(), ep, WebhookPayload{Text: "hello", DurationMs: 10}); err != nil {
		t.Fatalf("send() error = %v", err)
	}
	if got.Text != "hello" || got.DurationMs != 10 {
		t.Errorf("server received %+v", got)
	}

	ep.secret = "wrong"
	if err := n.send(context.Background(), ep, WebhookPayload{Text: "hello"}); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestSendRetries(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
	}{
		{"server error is retried", http.StatusInternalServerError, constants.NotifyMaxRetries},
		{"client error is not retried", http.StatusUnauthorized, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			ep := testEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			})

			if err := fastNotifier().send(context.Background(), ep, WebhookPayload{Text: "x"}); err == nil {
				t.Fatal("expected send() to fail")
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("server called %d times, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestReminderText(t *testing.T) {
	ada := models.Patient{Name: "Ada"}
	pending := func(med, at string) models.Dose {
		return models.Dose{MedicationName: med, ScheduledTime: at, Status: constants.DoseStatusPending}
	}

	tests := []struct {
		name  string
		doses []models.Dose
		want  string
	}{
		{"nothing scheduled", nil, ""},
		{"all taken", []models.Dose{{MedicationName: "Aspirin", Status: constants.DoseStatusTaken}}, ""},
		{"one pending", []models.Dose{pending("Aspirin", "08:00")}, "Ada: time for Aspirin at 08:00"},
		{
			"several pending",
			[]models.Dose{pending("Aspirin", ""), {MedicationName: "Statin", Status: constants.DoseStatusMissed}, pending("Metformin", "20:00")},
			"Ada: 2 doses pending today (Aspirin, Metformin at 20:00)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReminderText(ada, tt.doses); got != tt.want {
				t.Errorf("ReminderText() = %q, want %q", got, tt.want)
			}
		})
	}
}
