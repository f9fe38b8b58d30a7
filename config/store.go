package config

import (
	"fmt"

	"github.com/stonk0105/volleysched/core/factory"
	"github.com/stonk0105/volleysched/core/store"
)

// StoreConfig defines settings for run record storage and rotation.
type StoreConfig struct {
	// Backend selects the store type: "jsonl", "rotating", "sqlite" or "memory".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" && c.Backend != "memory" {
		c.Path = "runs.jsonl"
	}
}

// Validate checks mandatory fields.
func (c StoreConfig) Validate() error {
	known := false
	for _, b := range store.Backends() {
		known = known || b == c.Backend
	}
	if !known {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" && c.Backend != "memory" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// Module returns the store module configuration.
func (c StoreConfig) Module() factory.ModuleConfig {
	return factory.ModuleConfig{Type: c.Backend, Conf: map[string]any{
		"path":         c.Path,
		"max_size_mb":  c.MaxSizeMB,
		"max_backups":  c.MaxBackups,
		"max_age_days": c.MaxAgeDays,
	}}
}
