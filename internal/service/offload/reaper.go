package offload

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/allanpeda/motion-scripts/internal/port"
)

// Reaper enforces the local disk ceiling on the video directory
type Reaper struct {
	local   port.LocalStore
	ceiling int64
	logger  *zap.Logger
}

// NewReaper creates a new Reaper
func NewReaper(local port.LocalStore, ceiling int64, logger *zap.Logger) *Reaper {
	return &Reaper{
		local:   local,
		ceiling: ceiling,
		logger:  logger,
	}
}

// Reap deletes the oldest recordings needed to bring the directory back
// under the ceiling. Walking newest-first, each file whose addition pushes
// the running total over the ceiling is deleted and the total decremented,
// so a small old file can survive a large newer one being reaped.
// Returns the number of files deleted and bytes freed.
func (r *Reaper) Reap(ctx context.Context) (int, int64, error) {
	total, err := r.local.DirSize()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to measure directory size: %w", err)
	}

	if total <= r.ceiling {
		r.logger.Debug("disk usage under ceiling",
			zap.Int64("total_bytes", total),
			zap.Int64("ceiling_bytes", r.ceiling))
		return 0, 0, nil
	}

	r.logger.Info("disk ceiling exceeded, reaping oldest files",
		zap.Int64("total_bytes", total),
		zap.Int64("ceiling_bytes", r.ceiling))

	files, err := r.local.ListVideos()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list local files: %w", err)
	}

	var (
		running int64
		deleted int
		freed   int64
	)

	for _, f := range files {
		select {
		case <-ctx.Done():
			return deleted, freed, ctx.Err()
		default:
		}

		running += f.Size
		if running <= r.ceiling {
			continue
		}

		if err := r.local.Remove(f.Path); err != nil {
			// Best-effort: the file stays on disk and keeps counting
			// against the ceiling
			r.logger.Error("failed to delete file",
				zap.String("path", f.Path),
				zap.Error(err))
			continue
		}

		running -= f.Size
		deleted++
		freed += f.Size
		r.logger.Info("reaped file",
			zap.String("name", f.Name),
			zap.Int64("size", f.Size),
			zap.Time("mod_time", f.ModTime))
	}

	r.logger.Info("reap completed",
		zap.Int("deleted_count", deleted),
		zap.Int64("freed_bytes", freed))

	return deleted, freed, nil
}
