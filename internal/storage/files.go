package storage

import (
	"os"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// EnsureDir creates the directory if it doesn't exist
func EnsureDir(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// FileSize returns the size of the file at path, or -1 if it does not exist
// or is not a regular file.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return -1
	}
	return info.Size()
}

// FileExists reports whether a regular file exists at path.
func FileExists(path string) bool {
	return FileSize(path) >= 0
}

// RemoveQuiet deletes the file at path, ignoring errors. Used to discard
// partial or rejected downloads where cleanup failure is not actionable.
func RemoveQuiet(path string) {
	_ = os.Remove(path)
}

// FirstExisting returns the first path in candidates that exists as a
// regular file, or empty string when none do.
func FirstExisting(candidates []string) string {
	for _, p := range candidates {
		if FileExists(p) {
			return p
		}
	}
	return ""
}
