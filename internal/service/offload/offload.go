package offload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/allanpeda/motion-scripts/internal/domain"
	"github.com/allanpeda/motion-scripts/internal/port"
)

// ErrAlreadyRunning is returned when another offload run holds the lock
var ErrAlreadyRunning = errors.New("another offload run is already in progress")

// Config contains offload pipeline configuration
type Config struct {
	// LockPath is the lock file guarding against overlapping runs
	LockPath string

	// DiskCeiling is the local directory size ceiling in bytes
	DiskCeiling int64

	// RecentWindow bounds both local selection and remote inventory age
	RecentWindow time.Duration

	// SettleWindow is the minimum file age before upload eligibility
	SettleWindow time.Duration

	// ExpiryAge is the minimum remote age before deletion
	ExpiryAge time.Duration
}

// Report summarizes a completed run
type Report struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	Reaped      int
	ReapedBytes int64
	Uploaded    int
	Expired     int
}

// Summary returns the end-of-run copy message
func (r *Report) Summary() string {
	switch r.Uploaded {
	case 0:
		return "No files copied."
	case 1:
		return "Copied 1 file."
	default:
		return fmt.Sprintf("Copied %d files.", r.Uploaded)
	}
}

// Service runs the offload pipeline: reap, inventory, upload, expire.
// A non-blocking exclusive file lock refuses overlapping runs.
type Service struct {
	config    *Config
	reaper    *Reaper
	inventory *Inventory
	uploader  *Uploader
	expirer   *Expirer
	journal   port.RunJournal
	logger    *zap.Logger
	lock      *flock.Flock
}

// New creates a new offload Service
func New(cfg *Config, local port.LocalStore, open port.OpenFileChecker, remote port.RemoteStore, channels *domain.ChannelMap, journal port.RunJournal, logger *zap.Logger) *Service {
	return &Service{
		config:    cfg,
		reaper:    NewReaper(local, cfg.DiskCeiling, logger),
		inventory: NewInventory(remote, channels, cfg.RecentWindow, logger),
		uploader:  NewUploader(local, open, remote, channels, cfg.RecentWindow, cfg.SettleWindow, logger),
		expirer:   NewExpirer(remote, channels, cfg.ExpiryAge, logger),
		journal:   journal,
		logger:    logger,
		lock:      flock.New(cfg.LockPath),
	}
}

// Run executes one full pipeline pass. Returns ErrAlreadyRunning without
// executing any step when another run holds the lock; the lock is released
// on every other return path.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release run lock", zap.Error(err))
		}
	}()

	report := &Report{StartedAt: time.Now()}
	s.logger.Info("offload run started",
		zap.String("lock", s.config.LockPath),
		zap.Time("started_at", report.StartedAt))

	var runID int64
	if s.journal != nil {
		runID, err = s.journal.RecordRunStart(report.StartedAt)
		if err != nil {
			s.logger.Warn("failed to journal run start", zap.Error(err))
			runID = 0
		}
	}

	reaped, freed, err := s.reaper.Reap(ctx)
	if err != nil {
		return nil, fmt.Errorf("disk reap: %w", err)
	}
	report.Reaped = reaped
	report.ReapedBytes = freed

	uploadedSet, err := s.inventory.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("remote inventory: %w", err)
	}

	uploads, err := s.uploader.Upload(ctx, uploadedSet)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	report.Uploaded = len(uploads)

	if s.journal != nil && runID != 0 {
		for _, up := range uploads {
			if err := s.journal.RecordUpload(runID, up.Name, up.SubPath, up.Size, up.At); err != nil {
				s.logger.Warn("failed to journal upload",
					zap.String("name", up.Name),
					zap.Error(err))
			}
		}
	}

	expired, err := s.expirer.Expire(ctx)
	if err != nil {
		return nil, fmt.Errorf("remote expiry: %w", err)
	}
	report.Expired = expired

	report.FinishedAt = time.Now()
	if s.journal != nil && runID != 0 {
		if err := s.journal.FinishRun(runID, report.FinishedAt, report.Reaped, report.Uploaded, report.Expired); err != nil {
			s.logger.Warn("failed to journal run finish", zap.Error(err))
		}
	}

	s.logger.Info("offload run finished",
		zap.Int("reaped", report.Reaped),
		zap.Int("uploaded", report.Uploaded),
		zap.Int("expired", report.Expired),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))

	return report, nil
}
