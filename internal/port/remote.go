package port

import (
	"context"
	"time"
)

// RemoteObject represents an object in the remote store
type RemoteObject struct {
	Key          string // full object key
	Name         string // basename under the sub-path
	Size         int64
	LastModified time.Time
}

// RemoteStore defines the interface for remote object store operations
type RemoteStore interface {
	// ListNewerThan returns objects under subPath modified at or after since
	ListNewerThan(ctx context.Context, subPath string, since time.Time) ([]RemoteObject, error)

	// Upload copies a local file to subPath under the given name
	Upload(ctx context.Context, localPath, subPath, name string) error

	// DeleteOlderThan deletes objects under subPath last modified before
	// cutoff and returns the number deleted
	DeleteOlderThan(ctx context.Context, subPath string, cutoff time.Time) (int, error)
}
