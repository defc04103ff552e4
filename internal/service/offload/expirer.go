package offload

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/allanpeda/motion-scripts/internal/domain"
	"github.com/allanpeda/motion-scripts/internal/port"
)

// Expirer deletes aged-out remote copies under the expiring channels
type Expirer struct {
	remote    port.RemoteStore
	channels  *domain.ChannelMap
	expiryAge time.Duration
	logger    *zap.Logger
}

// NewExpirer creates a new Expirer
func NewExpirer(remote port.RemoteStore, channels *domain.ChannelMap, expiryAge time.Duration, logger *zap.Logger) *Expirer {
	return &Expirer{
		remote:    remote,
		channels:  channels,
		expiryAge: expiryAge,
		logger:    logger,
	}
}

// Expire deletes remote objects older than the expiry age under every
// channel not marked Retain. Returns the total number of objects deleted.
func (e *Expirer) Expire(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-e.expiryAge)
	total := 0

	for _, ch := range e.channels.Channels() {
		if ch.Retain {
			continue
		}

		deleted, err := e.remote.DeleteOlderThan(ctx, ch.SubPath, cutoff)
		if err != nil {
			return total, fmt.Errorf("failed to expire %s: %w", ch.SubPath, err)
		}
		if deleted > 0 {
			e.logger.Info("expired remote files",
				zap.String("sub_path", ch.SubPath),
				zap.Int("count", deleted))
		}
		total += deleted
	}

	return total, nil
}
