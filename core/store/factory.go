package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/stonk0105/volleysched/core/factory"
)

// Options are the settings shared by the file backed stores.
type Options struct {
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

var registry = factory.NewRegistry[Store]()

// Register adds a store backend.
func Register(name string, f factory.Factory[Store]) error {
	return registry.Register(name, f)
}

// New opens the store described by cfg.
func New(cfg factory.ModuleConfig) (Store, error) {
	return registry.Create(cfg)
}

// Backends lists the registered backends.
func Backends() []string { return registry.Names() }

func fileBackend(open func(Options) (Store, error)) factory.Factory[Store] {
	return func(conf map[string]any) (Store, error) {
		var o Options
		if err := factory.Decode(conf, &o); err != nil {
			return nil, err
		}
		if o.Path == "" {
			return nil, fmt.Errorf("store path is required")
		}
		return open(o)
	}
}

func init() {
	_ = Register("memory", func(map[string]any) (Store, error) { return NewMemoryStore(), nil })
	_ = Register("jsonl", fileBackend(func(o Options) (Store, error) { return NewJSONLStore(o.Path) }))
	_ = Register("rotating", fileBackend(func(o Options) (Store, error) {
		return NewRotatingJSONLStore(o.Path, o.MaxSizeMB, o.MaxBackups, o.MaxAgeDays)
	}))
	_ = Register("sqlite", fileBackend(func(o Options) (Store, error) { return NewSQLiteStore(o.Path) }))
}

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
