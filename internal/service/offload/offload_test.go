package offload

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/allanpeda/motion-scripts/internal/domain"
	"github.com/allanpeda/motion-scripts/internal/port"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		LockPath:     filepath.Join(t.TempDir(), "offload.lock"),
		DiskCeiling:  1000,
		RecentWindow: time.Hour,
		SettleWindow: 5 * time.Minute,
		ExpiryAge:    14 * 24 * time.Hour,
	}
}

func TestReportSummary(t *testing.T) {
	tests := []struct {
		uploaded int
		want     string
	}{
		{0, "No files copied."},
		{1, "Copied 1 file."},
		{2, "Copied 2 files."},
		{17, "Copied 17 files."},
	}

	for _, tt := range tests {
		r := &Report{Uploaded: tt.uploaded}
		if got := r.Summary(); got != tt.want {
			t.Errorf("Summary() with %d uploads = %q, want %q", tt.uploaded, got, tt.want)
		}
	}
}

func TestServiceRun(t *testing.T) {
	cfg := testConfig(t)
	local := &mockLocalStore{
		dirSize: 500, // under ceiling, nothing reaped
		files: []domain.VideoFile{
			videoFile("CAM01-a.mkv", 30*time.Minute),
			videoFile("CAM02-b.mkv", 45*time.Minute),
		},
	}
	remote := &mockRemoteStore{
		objects: map[string][]port.RemoteObject{
			"cam02": {
				{Name: "CAM02-b.mkv", LastModified: time.Now().Add(-20 * time.Minute)},
			},
		},
		deleteCounts: map[string]int{"cam01": 3},
	}
	journal := &mockJournal{}

	svc := New(cfg, local, &mockOpenChecker{}, remote, testChannelMap(), journal, zap.NewNop())

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Reaped != 0 {
		t.Errorf("Report.Reaped = %d, want 0", report.Reaped)
	}
	// CAM02-b.mkv is already present remotely; only CAM01-a.mkv uploads
	if report.Uploaded != 1 {
		t.Errorf("Report.Uploaded = %d, want 1", report.Uploaded)
	}
	if report.Expired != 3 {
		t.Errorf("Report.Expired = %d, want 3", report.Expired)
	}
	if got := report.Summary(); got != "Copied 1 file." {
		t.Errorf("Summary() = %q, want %q", got, "Copied 1 file.")
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Error("Report.FinishedAt precedes StartedAt")
	}

	if len(journal.starts) != 1 {
		t.Fatalf("journal recorded %d starts, want 1", len(journal.starts))
	}
	if len(journal.uploads) != 1 || journal.uploads[0].Name != "CAM01-a.mkv" {
		t.Errorf("journal uploads = %+v, want one CAM01-a.mkv entry", journal.uploads)
	}
	if len(journal.finishes) != 1 {
		t.Fatalf("journal recorded %d finishes, want 1", len(journal.finishes))
	}
	fin := journal.finishes[0]
	if fin.Reaped != 0 || fin.Uploaded != 1 || fin.Expired != 3 {
		t.Errorf("journal finish = %+v, want 0/1/3", fin)
	}
}

func TestServiceRunRefusedWhenLockHeld(t *testing.T) {
	cfg := testConfig(t)
	journal := &mockJournal{}
	svc := New(cfg, &mockLocalStore{}, &mockOpenChecker{}, &mockRemoteStore{}, testChannelMap(), journal, zap.NewNop())

	// Another invocation holds the lock
	other := flock.New(cfg.LockPath)
	locked, err := other.TryLock()
	if err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	if !locked {
		t.Fatal("test setup: could not take the lock")
	}
	defer other.Unlock()

	_, err = svc.Run(context.Background())
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("Run() error = %v, want ErrAlreadyRunning", err)
	}

	// No pipeline step executed
	if len(journal.starts) != 0 {
		t.Errorf("journal recorded %d starts, want 0 for refused run", len(journal.starts))
	}
}

func TestServiceRunReleasesLock(t *testing.T) {
	cfg := testConfig(t)
	svc := New(cfg, &mockLocalStore{dirSize: 0}, &mockOpenChecker{}, &mockRemoteStore{}, testChannelMap(), nil, zap.NewNop())

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The lock must be free again after the run
	other := flock.New(cfg.LockPath)
	locked, err := other.TryLock()
	if err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	if !locked {
		t.Error("lock still held after Run() returned")
	}
	other.Unlock()
}

func TestServiceRunReleasesLockOnError(t *testing.T) {
	cfg := testConfig(t)
	local := &mockLocalStore{sizeErr: errors.New("io error")}
	svc := New(cfg, local, &mockOpenChecker{}, &mockRemoteStore{}, testChannelMap(), nil, zap.NewNop())

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("Run() expected error, got nil")
	}

	other := flock.New(cfg.LockPath)
	locked, err := other.TryLock()
	if err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	if !locked {
		t.Error("lock still held after failed Run()")
	}
	other.Unlock()
}

func TestServiceRunWithoutJournal(t *testing.T) {
	cfg := testConfig(t)
	local := &mockLocalStore{
		dirSize: 100,
		files: []domain.VideoFile{
			videoFile("CAM03-a.mkv", 20*time.Minute),
		},
	}
	svc := New(cfg, local, &mockOpenChecker{}, &mockRemoteStore{}, testChannelMap(), nil, zap.NewNop())

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Uploaded != 1 {
		t.Errorf("Report.Uploaded = %d, want 1", report.Uploaded)
	}
}
