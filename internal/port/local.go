package port

import (
	"github.com/allanpeda/motion-scripts/internal/domain"
)

// LocalStore defines the interface for local video directory operations
type LocalStore interface {
	// Dir returns the video directory path
	Dir() string

	// ListVideos returns recordings matching the camera naming convention,
	// sorted newest-first by modification time
	ListVideos() ([]domain.VideoFile, error)

	// DirSize returns the total recursive size of the video directory
	DirSize() (int64, error)

	// Remove deletes a local file; a missing file is not an error
	Remove(path string) error
}

// OpenFileChecker reports whether a file is currently held open by
// another process
type OpenFileChecker interface {
	IsOpen(path string) (bool, error)
}
