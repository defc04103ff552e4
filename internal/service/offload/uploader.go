package offload

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/allanpeda/motion-scripts/internal/domain"
	"github.com/allanpeda/motion-scripts/internal/port"
)

// Upload describes one successfully uploaded file
type Upload struct {
	Name    string
	SubPath string
	Size    int64
	At      time.Time
}

// Uploader copies eligible local recordings to their channel sub-paths
type Uploader struct {
	local        port.LocalStore
	open         port.OpenFileChecker
	remote       port.RemoteStore
	channels     *domain.ChannelMap
	recentWindow time.Duration
	settleWindow time.Duration
	logger       *zap.Logger
}

// NewUploader creates a new Uploader
func NewUploader(local port.LocalStore, open port.OpenFileChecker, remote port.RemoteStore, channels *domain.ChannelMap, recentWindow, settleWindow time.Duration, logger *zap.Logger) *Uploader {
	return &Uploader{
		local:        local,
		open:         open,
		remote:       remote,
		channels:     channels,
		recentWindow: recentWindow,
		settleWindow: settleWindow,
		logger:       logger,
	}
}

// Upload copies local files inside the sliding window that are not in the
// uploaded set and not held open by another process. A file must be
// strictly newer than the recent-window bound and strictly older than the
// settle bound. Only transfers that succeed are counted.
func (u *Uploader) Upload(ctx context.Context, uploaded map[string]bool) ([]Upload, error) {
	files, err := u.local.ListVideos()
	if err != nil {
		return nil, fmt.Errorf("failed to list local files: %w", err)
	}

	now := time.Now()
	oldestBound := now.Add(-u.recentWindow)
	settleBound := now.Add(-u.settleWindow)

	var done []Upload
	for _, f := range files {
		select {
		case <-ctx.Done():
			return done, ctx.Err()
		default:
		}

		if !f.ModTime.After(oldestBound) || !f.ModTime.Before(settleBound) {
			continue
		}

		if uploaded[f.Name] {
			u.logger.Debug("already uploaded, skipping",
				zap.String("name", f.Name))
			continue
		}

		isOpen, err := u.open.IsOpen(f.Path)
		if err != nil {
			u.logger.Warn("open-file check failed, skipping",
				zap.String("name", f.Name),
				zap.Error(err))
			continue
		}
		if isOpen {
			u.logger.Debug("file still open, skipping",
				zap.String("name", f.Name))
			continue
		}

		ch, err := u.channels.Resolve(f.Name)
		if err != nil {
			u.logger.Warn("unrecognized channel prefix, skipping",
				zap.String("name", f.Name))
			continue
		}

		if err := u.remote.Upload(ctx, f.Path, ch.SubPath, f.Name); err != nil {
			u.logger.Error("upload failed",
				zap.String("name", f.Name),
				zap.String("sub_path", ch.SubPath),
				zap.Error(err))
			continue
		}

		u.logger.Info("uploaded file",
			zap.String("name", f.Name),
			zap.String("sub_path", ch.SubPath),
			zap.Int64("size", f.Size))

		done = append(done, Upload{
			Name:    f.Name,
			SubPath: ch.SubPath,
			Size:    f.Size,
			At:      time.Now(),
		})
	}

	return done, nil
}
