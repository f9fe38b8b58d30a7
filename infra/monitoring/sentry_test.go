package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonk0105/volleysched/config"
	coremon "github.com/stonk0105/volleysched/core/monitoring"
)

func TestNewSentryMonitor_EmptyDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestNewSentryMonitor_InvalidDSN(t *testing.T) {
	_, err := NewSentryMonitor(config.SentryConfig{DSN: "://not-a-dsn"})
	assert.Error(t, err)
}

func TestNewSentryMonitor_ValidDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{DSN: "https://public@sentry.example.com/1", Environment: "test"})
	require.NoError(t, err)
	_, ok := m.(*sentryMonitor)
	assert.True(t, ok)
}
