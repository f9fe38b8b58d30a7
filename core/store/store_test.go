package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonk0105/volleysched/core/factory"
	"github.com/stonk0105/volleysched/core/model"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	jsonl, err := NewJSONLStore(filepath.Join(dir, "runs", "runs.jsonl"))
	require.NoError(t, err)
	rotating, err := NewRotatingJSONLStore(filepath.Join(dir, "rot", "runs.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	sqlite, err := NewSQLiteStore(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	out := map[string]Store{
		"memory":   NewMemoryStore(),
		"jsonl":    jsonl,
		"rotating": rotating,
		"sqlite":   sqlite,
	}
	t.Cleanup(func() {
		for _, s := range out {
			_ = s.Close()
		}
	})
	return out
}

func record(ts time.Time, status string) RunRecord {
	rec := RunRecord{ID: uuid.NewString(), Timestamp: ts, Status: status, Duration: 1500 * time.Millisecond, Matches: 1}
	if status == StatusOptimal {
		rec.Result = &model.Result{
			Status:        status,
			Makespan:      2,
			Schedule:      []model.ScheduleRow{{Day: 2, Field: 0, Match: "a vs b", Referee: "r", Group: "A"}},
			RefereeCounts: []model.RefereeCount{{Referee: "r", Games: 1}},
		}
	} else {
		rec.Error = "no feasible schedule"
	}
	return rec
}

func TestStores_AppendQueryGet(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			recs := []RunRecord{
				record(base, StatusOptimal),
				record(base.Add(time.Hour), StatusInfeasible),
				record(base.Add(2*time.Hour), StatusOptimal),
			}
			for _, r := range recs {
				require.NoError(t, s.Append(ctx, r))
			}

			all, err := s.Query(ctx, RunQuery{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, recs[0].ID, all[0].ID)
			assert.Equal(t, recs[2].ID, all[2].ID)
			assert.Equal(t, recs[0].Result, all[0].Result)
			assert.Equal(t, recs[0].Duration, all[0].Duration)

			opt, err := s.Query(ctx, RunQuery{Status: StatusOptimal})
			require.NoError(t, err)
			assert.Len(t, opt, 2)

			window, err := s.Query(ctx, RunQuery{Start: base.Add(30 * time.Minute), End: base.Add(90 * time.Minute)})
			require.NoError(t, err)
			require.Len(t, window, 1)
			assert.Equal(t, recs[1].ID, window[0].ID)

			last, err := s.Query(ctx, RunQuery{Limit: 1})
			require.NoError(t, err)
			require.Len(t, last, 1)
			assert.Equal(t, recs[2].ID, last[0].ID)

			got, err := s.Get(ctx, recs[1].ID)
			require.NoError(t, err)
			assert.Equal(t, "no feasible schedule", got.Error)
			assert.True(t, recs[1].Timestamp.Equal(got.Timestamp))

			_, err = s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	s, err := NewRotatingJSONLStore(path, 1, 5, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = s.Close() }()

	rec := record(time.Now(), StatusInfeasible)
	rec.Error = strings.Repeat("x", 200*1024)
	for i := 0; i < 8; i++ {
		rec.ID = fmt.Sprintf("run-%d", i)
		if err := s.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	files, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*"))
	if len(files) < 2 {
		t.Fatalf("expected rotated files, got %v", files)
	}
	out, err := s.Query(context.Background(), RunQuery{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 8 {
		t.Fatalf("expected 8 records, got %d", len(out))
	}
	if out[0].ID != "run-0" || out[7].ID != "run-7" {
		t.Fatalf("records out of order: %s .. %s", out[0].ID, out[7].ID)
	}
}

func TestJSONLStore_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	s, err := NewJSONLStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(context.Background(), record(time.Now(), StatusOptimal)))
	require.NoError(t, appendRaw(path, "{not json\n"))
	require.NoError(t, s.Append(context.Background(), record(time.Now(), StatusOptimal)))

	out, err := s.Query(context.Background(), RunQuery{})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestNew_Backends(t *testing.T) {
	assert.Equal(t, []string{"jsonl", "memory", "rotating", "sqlite"}, Backends())

	s, err := New(factory.ModuleConfig{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": filepath.Join(t.TempDir(), "r.jsonl")}})
	require.NoError(t, err)
	assert.IsType(t, &JSONLStore{}, s)

	_, err = New(factory.ModuleConfig{Type: "sqlite"})
	assert.Error(t, err)

	_, err = New(factory.ModuleConfig{Type: "postgres"})
	assert.Error(t, err)
}
