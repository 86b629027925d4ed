package dev

import (
	"path/filepath"

	"github.com/vango-dev/fsroute/internal/config"
)

// NewProjectWatcher creates a Watcher over the project's routes directory
// using the configured ignore patterns and interval.
func NewProjectWatcher(cfg *config.Config) *Watcher {
	return NewWatcher(WatcherConfig{
		Paths:    []string{filepath.Clean(cfg.RoutesPath())},
		Ignore:   append(append([]string(nil), DefaultIgnore...), cfg.Server.Ignore...),
		Interval: cfg.WatchInterval(),
	})
}
