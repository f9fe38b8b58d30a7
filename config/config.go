package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/stonk0105/volleysched/core/metrics"
	"github.com/stonk0105/volleysched/infra/mqtt"
)

// EnvFile is loaded into the process environment before overrides are read.
var EnvFile = ".env"

type Config struct {
	Schedule ScheduleConfig `json:"schedule"`
	Store    StoreConfig    `json:"store"`
	Metrics  metrics.Config `json:"metrics"`
	Server   ServerConfig   `json:"server"`
	MQTT     mqtt.Config    `json:"mqtt"`
	Sentry   SentryConfig   `json:"sentry"`
	Grouping GroupingConfig `json:"grouping"`
}

// Load reads the configuration file at path, applies K_ environment
// overrides (K_SCHEDULE__FIELDS=6 sets schedule.fields) and fills defaults.
// An empty path yields the defaults with environment overrides only.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", EnvFile, err)
	}
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Schedule.SetDefaults()
	c.Store.SetDefaults()
	c.Server.SetDefaults()
	c.MQTT.SetDefaults()
	c.Sentry.SetDefaults()
}

// Validate checks every section and names the failing one.
func (c Config) Validate() error {
	checks := []struct {
		name string
		err  error
	}{
		{"schedule", c.Schedule.Validate()},
		{"store", c.Store.Validate()},
		{"server", c.Server.Validate()},
		{"mqtt", c.MQTT.Validate()},
		{"sentry", c.Sentry.Validate()},
	}
	for _, ch := range checks {
		if ch.err != nil {
			return fmt.Errorf("%s: %w", ch.name, ch.err)
		}
	}
	return nil
}
