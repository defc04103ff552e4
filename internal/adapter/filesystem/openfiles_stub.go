//go:build !linux
// +build !linux

package filesystem

import (
	"github.com/allanpeda/motion-scripts/internal/port"
)

// ProcChecker has no open-file-table source outside Linux; it reports
// every file as closed and the settle window is the only guard against
// uploading segments still being written.
type ProcChecker struct{}

// Ensure ProcChecker implements port.OpenFileChecker
var _ port.OpenFileChecker = (*ProcChecker)(nil)

// NewProcChecker creates a no-op open-file checker
func NewProcChecker() *ProcChecker {
	return &ProcChecker{}
}

// IsOpen always reports the file as closed
func (c *ProcChecker) IsOpen(path string) (bool, error) {
	return false, nil
}
