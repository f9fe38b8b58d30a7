package store

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
)

// JSONLStore stores runs in a JSONL file.
type JSONLStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONLStore(path string) (*JSONLStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &JSONLStore{path: path}, nil
}

func (s *JSONLStore) Append(ctx context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return json.NewEncoder(f).Encode(rec)
}

func (s *JSONLStore) Query(ctx context.Context, q RunQuery) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var res []RunRecord
	if err := scanRecords(f, func(r RunRecord) {
		if q.match(r) {
			res = append(res, r)
		}
	}); err != nil {
		return nil, err
	}
	return q.trim(res), nil
}

func (s *JSONLStore) Get(ctx context.Context, id string) (RunRecord, error) {
	return getByID(ctx, s, id)
}

func (s *JSONLStore) Close() error { return nil }

// scanRecords decodes one record per line. Malformed lines are skipped.
func scanRecords(r io.Reader, fn func(RunRecord)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var rec RunRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		fn(rec)
	}
	return scanner.Err()
}

// getByID scans every record of s for id. The last record with that id wins.
func getByID(ctx context.Context, s Store, id string) (RunRecord, error) {
	all, err := s.Query(ctx, RunQuery{})
	if err != nil {
		return RunRecord{}, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].ID == id {
			return all[i], nil
		}
	}
	return RunRecord{}, ErrNotFound
}
