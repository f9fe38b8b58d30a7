package config

import "fmt"

// ServerConfig defines the HTTP API settings.
type ServerConfig struct {
	Addr string `json:"addr"`
	// Token protects the POST routes with a bearer token when set.
	Token       string   `json:"token"`
	CORSOrigins []string `json:"cors_origins"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	return nil
}

// GroupingConfig holds the group draw settings.
type GroupingConfig struct {
	// Seed makes draws reproducible. Zero lets callers pick a seed.
	Seed uint64 `json:"seed"`
}
