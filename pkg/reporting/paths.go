package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultPathManager implements path management functionality
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// GetDefaultOutputDir returns the default output directory for a risk profile
func (p *DefaultPathManager) GetDefaultOutputDir(profile string) string {
	name := strings.ToLower(strings.TrimSpace(profile))
	if name == "" {
		name = "default"
	}
	return filepath.Join("reports", name)
}

// EnsureDirectoryExists creates the parent directory if it doesn't exist
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// TimestampedFilename builds a collision-free report file name
func TimestampedFilename(prefix, ext string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, at.Format("20060102_150405"), ext)
}

// Package-level convenience function
func DefaultOutputDir(profile string) string {
	manager := NewDefaultPathManager()
	return manager.GetDefaultOutputDir(profile)
}
