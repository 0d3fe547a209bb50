package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	logx "gramgrab/pkg/logx"
)

// Store is a concurrency-safe JSON document mapping chat ids to attribute
// records. Every mutation is persisted before the call returns, via
// write-temp-then-rename so a crash never leaves the file half-written.
//
// The in-memory map is guarded by mu; disk writes happen outside mu and are
// serialized by fileMu. A sequence number makes sure an older snapshot can
// never overwrite a newer one when two persists race.
type Store struct {
	path string
	log  logx.Logger

	mu   sync.Mutex
	data map[string]map[string]any
	seq  uint64

	fileMu  sync.Mutex
	written uint64 // last seq persisted, guarded by fileMu
}

// Open loads the document at path. An unreadable or corrupt file is not
// fatal: the store starts empty and overwrites it on the next mutation.
func Open(path string, log logx.Logger) *Store {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Store{path: path, log: log, data: map[string]map[string]any{}}

	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("state file unreadable; starting empty", logx.String("path", path), logx.Err(err))
		}
		return s
	}
	if err := json.Unmarshal(b, &s.data); err != nil {
		log.Warn("state file corrupt; starting empty", logx.String("path", path), logx.Err(err))
		s.data = map[string]map[string]any{}
	}
	return s
}

func keyStr(key int64) string { return strconv.FormatInt(key, 10) }

// Get returns a copy of the record for key, or nil if absent.
func (s *Store) Get(key int64) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[keyStr(key)]
	if !ok {
		return nil
	}
	cp := make(map[string]any, len(rec))
	for k, v := range rec {
		cp[k] = v
	}
	return cp
}

// Set replaces the whole record for key. An empty (non-nil) record is valid
// and is how counters are reset.
func (s *Store) Set(key int64, rec map[string]any) error {
	s.mu.Lock()
	cp := make(map[string]any, len(rec))
	for k, v := range rec {
		cp[k] = v
	}
	s.data[keyStr(key)] = cp
	b, seq, err := s.snapshotLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.persist(b, seq)
}

// UpdateField sets a single field, creating the record if needed.
func (s *Store) UpdateField(key int64, field string, value any) error {
	s.mu.Lock()
	rec := s.record(keyStr(key))
	rec[field] = value
	b, seq, err := s.snapshotLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.persist(b, seq)
}

// Increment adds amount to a numeric field (absent counts as zero) and
// returns the new value.
func (s *Store) Increment(key int64, field string, amount int64) (int64, error) {
	s.mu.Lock()
	rec := s.record(keyStr(key))
	n := asInt64(rec[field]) + amount
	rec[field] = n
	b, seq, err := s.snapshotLocked()
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return n, s.persist(b, seq)
}

// record returns the live record for k, creating it if absent. Caller holds mu.
func (s *Store) record(k string) map[string]any {
	rec, ok := s.data[k]
	if !ok {
		rec = map[string]any{}
		s.data[k] = rec
	}
	return rec
}

func (s *Store) snapshotLocked() ([]byte, uint64, error) {
	s.seq++
	b, err := json.MarshalIndent(s.data, "", "  ")
	return b, s.seq, err
}

func (s *Store) persist(b []byte, seq uint64) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	if seq <= s.written {
		// A newer snapshot already reached disk.
		return nil
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}
	s.written = seq
	return nil
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case float64:
		// JSON numbers decode as float64.
		return int64(x)
	case json.Number:
		n, _ := x.Int64()
		return n
	default:
		return 0
	}
}
