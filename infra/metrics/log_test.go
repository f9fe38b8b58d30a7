package metrics

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/stonk0105/volleysched/core/metrics"
	"github.com/stonk0105/volleysched/infra/logger"
)

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(logger.NewZerologLoggerTo(&buf, "metrics", "debug"))

	require.NoError(t, s.RecordRun(coremetrics.RunEvent{RunID: "r1", Status: "optimal", Makespan: 3, Duration: time.Second}))
	require.NoError(t, s.RecordRefereeLoad([]coremetrics.RefereeLoad{{RunID: "r1", Referee: "Rita", Games: 2}}))
	require.NoError(t, s.RecordWarning(coremetrics.WarningEvent{RunID: "r1", Message: "group J has a single team"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	var run, load, warn map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &run))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &load))
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &warn))

	assert.Equal(t, "schedule run", run["message"])
	assert.Equal(t, "optimal", run["status"])
	assert.EqualValues(t, 3, run["makespan"])
	assert.Equal(t, map[string]any{"Rita": float64(2)}, load["games"])
	assert.Equal(t, "warn", warn["level"])
	assert.Equal(t, "group J has a single team", warn["warning"])
}
