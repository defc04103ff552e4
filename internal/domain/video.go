package domain

import (
	"regexp"
	"time"
)

// PrefixLen is the number of leading filename characters that identify
// the camera channel.
const PrefixLen = 5

// videoNamePattern matches camera recordings: a CAM<NN> prefix followed
// by anything and a three-character extension.
var videoNamePattern = regexp.MustCompile(`^CAM[0-9]{2}.*\.[A-Za-z0-9]{3}$`)

// VideoFile represents a camera recording on local disk.
type VideoFile struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Age returns how long ago the file was last modified, relative to now.
func (f *VideoFile) Age(now time.Time) time.Duration {
	return now.Sub(f.ModTime)
}

// IsVideoName reports whether name follows the camera recording naming
// convention.
func IsVideoName(name string) bool {
	return videoNamePattern.MatchString(name)
}
