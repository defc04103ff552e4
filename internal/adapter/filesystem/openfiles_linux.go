//go:build linux
// +build linux

package filesystem

import (
	"os"
	"path/filepath"

	"github.com/allanpeda/motion-scripts/internal/port"
)

// ProcChecker reports whether a file is held open by any process,
// by scanning the fd tables under /proc. A segment the camera process
// is still writing shows up here and must not be uploaded yet.
type ProcChecker struct {
	procRoot string
}

// Ensure ProcChecker implements port.OpenFileChecker
var _ port.OpenFileChecker = (*ProcChecker)(nil)

// NewProcChecker creates an open-file checker backed by /proc
func NewProcChecker() *ProcChecker {
	return &ProcChecker{procRoot: "/proc"}
}

// IsOpen returns true if any process has the file open
func (c *ProcChecker) IsOpen(path string) (bool, error) {
	target, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved
	}

	procs, err := os.ReadDir(c.procRoot)
	if err != nil {
		return false, err
	}

	for _, proc := range procs {
		if !proc.IsDir() || !isNumeric(proc.Name()) {
			continue
		}
		fdDir := filepath.Join(c.procRoot, proc.Name(), "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			// Process exited or fd table not readable; not ours to report
			continue
		}
		for _, fd := range fds {
			link, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err != nil {
				continue
			}
			if link == target {
				return true, nil
			}
		}
	}

	return false, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
