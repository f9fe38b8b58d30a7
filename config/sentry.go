package config

import "fmt"

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	Release          string  `json:"release"`
	ServerName       string  `json:"server_name"`
	SampleRate       float64 `json:"sample_rate"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Debug            bool    `json:"debug"`
}

func (c *SentryConfig) SetDefaults() {
	if c.DSN == "" {
		return
	}
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1
	}
}

func (c SentryConfig) Validate() error {
	for name, r := range map[string]float64{"sample_rate": c.SampleRate, "traces_sample_rate": c.TracesSampleRate} {
		if r < 0 || r > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", name, r)
		}
	}
	return nil
}
