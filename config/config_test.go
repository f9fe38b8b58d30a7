package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `schedule:
  fields: 3
  workers: 2
  time_limit_seconds: 30
  weights:
    makespan: 2
    soft_availability: 0.5
    balance: 0.05
  solver:
    type: "branch-and-bound"
    conf:
      node_limit: 500
store:
  backend: "sqlite"
  path: "runs.db"
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "nop"
server:
  addr: ":9000"
  token: "secret"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  topic: "league"
  qos: 1
sentry:
  dsn: "https://key@example.com/1"
grouping:
  seed: 42
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"fields", cfg.Schedule.Fields, 3},
		{"workers", cfg.Schedule.Workers, 2},
		{"time_limit_seconds", cfg.Schedule.TimeLimitSeconds, 30.0},
		{"weights.makespan", cfg.Schedule.Weights.Makespan, 2.0},
		{"weights.balance", cfg.Schedule.Weights.Balance, 0.05},
		{"solver", cfg.Schedule.Solver.Type, "branch-and-bound"},
		{"store.backend", cfg.Store.Backend, "sqlite"},
		{"store.path", cfg.Store.Path, "runs.db"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"server.addr", cfg.Server.Addr, ":9000"},
		{"server.token", cfg.Server.Token, "secret"},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"topic", cfg.MQTT.Topic, "league"},
		{"qos", cfg.MQTT.QoS, byte(1)},
		{"sentry.dsn", cfg.Sentry.DSN, "https://key@example.com/1"},
		{"sentry.environment", cfg.Sentry.Environment, "production"},
		{"sentry.sample_rate", cfg.Sentry.SampleRate, 1.0},
		{"grouping.seed", cfg.Grouping.Seed, uint64(42)},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}

	planner := cfg.Schedule.Planner()
	assert.Equal(t, 30.0, planner.Solver.Conf["time_limit_seconds"])
	assert.Equal(t, 500, planner.Solver.Conf["node_limit"])
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Schedule.Fields)
	assert.Equal(t, "branch-and-bound", cfg.Schedule.Solver.Type)
	assert.Equal(t, 1.0, cfg.Schedule.Weights.Makespan)
	assert.Equal(t, "jsonl", cfg.Store.Backend)
	assert.Equal(t, "runs.jsonl", cfg.Store.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "volleysched", cfg.MQTT.Topic)
	assert.Positive(t, cfg.Schedule.Workers)
	assert.Equal(t, float64(DefaultTimeLimitSeconds), cfg.Schedule.TimeLimitSeconds)
	assert.Equal(t, float64(DefaultTimeLimitSeconds), cfg.Schedule.Planner().Solver.Conf["time_limit_seconds"])
	assert.Empty(t, cfg.Sentry.Environment)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("K_SCHEDULE__FIELDS", "6")
	t.Setenv("K_STORE__BACKEND", "memory")
	path := writeFile(t, "config.json", `{"schedule": {"fields": 2}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Schedule.Fields)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Empty(t, cfg.Store.Path)
}

func TestLoadEnvFile(t *testing.T) {
	EnvFile = writeFile(t, ".env", "K_SERVER__TOKEN=from-dotenv\n")
	t.Cleanup(func() {
		EnvFile = ".env"
		os.Unsetenv("K_SERVER__TOKEN")
	})
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Server.Token)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"format", "config.toml", "fields = 1"},
		{"negative fields", "config.yaml", "schedule:\n  fields: -1\n"},
		{"bad weights", "config.yaml", "schedule:\n  weights:\n    makespan: 0.1\n    soft_availability: 1\n    balance: 0.01\n"},
		{"unknown store", "config.yaml", "store:\n  backend: \"postgres\"\n"},
		{"negative limit", "config.yaml", "schedule:\n  node_limit: -5\n"},
		{"qos", "config.yaml", "mqtt:\n  qos: 3\n"},
		{"traces rate", "config.yaml", "sentry:\n  traces_sample_rate: 1.5\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.file, tc.data))
			assert.Error(t, err)
		})
	}
}
