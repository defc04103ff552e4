package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/allanpeda/motion-scripts/internal/domain"
	"github.com/allanpeda/motion-scripts/internal/port"
)

// Manager handles local video directory operations
type Manager struct {
	dir string
}

// Ensure Manager implements port.LocalStore
var _ port.LocalStore = (*Manager)(nil)

// NewManager creates a new filesystem manager for the video directory
func NewManager(dir string) (*Manager, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat video dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("video dir %s is not a directory", dir)
	}

	return &Manager{dir: dir}, nil
}

// Dir returns the video directory path
func (m *Manager) Dir() string {
	return m.dir
}

// ListVideos returns camera recordings in the video directory,
// sorted newest-first by modification time
func (m *Manager) ListVideos() ([]domain.VideoFile, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read video dir: %w", err)
	}

	files := make([]domain.VideoFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !domain.IsVideoName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// File removed between ReadDir and stat
			continue
		}
		files = append(files, domain.VideoFile{
			Path:    filepath.Join(m.dir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})

	return files, nil
}

// DirSize returns total size of the video directory, recursive
func (m *Manager) DirSize() (int64, error) {
	var size int64
	err := filepath.Walk(m.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// Remove deletes a local file
func (m *Manager) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
