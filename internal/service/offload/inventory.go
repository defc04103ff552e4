package offload

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/allanpeda/motion-scripts/internal/domain"
	"github.com/allanpeda/motion-scripts/internal/port"
)

// Inventory builds the transient set of basenames already present remotely.
// The set is rebuilt from a fresh remote listing on every run; nothing
// persists between runs.
type Inventory struct {
	remote   port.RemoteStore
	channels *domain.ChannelMap
	window   time.Duration
	logger   *zap.Logger
}

// NewInventory creates a new Inventory
func NewInventory(remote port.RemoteStore, channels *domain.ChannelMap, window time.Duration, logger *zap.Logger) *Inventory {
	return &Inventory{
		remote:   remote,
		channels: channels,
		window:   window,
		logger:   logger,
	}
}

// Fetch returns the basenames of objects modified within the recent window
// across all channel sub-paths
func (inv *Inventory) Fetch(ctx context.Context) (map[string]bool, error) {
	since := time.Now().Add(-inv.window)
	uploaded := make(map[string]bool)

	for _, ch := range inv.channels.Channels() {
		objects, err := inv.remote.ListNewerThan(ctx, ch.SubPath, since)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", ch.SubPath, err)
		}
		for _, obj := range objects {
			uploaded[obj.Name] = true
		}
	}

	inv.logger.Debug("remote inventory built",
		zap.Int("count", len(uploaded)),
		zap.Time("since", since))

	return uploaded, nil
}
