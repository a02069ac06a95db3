// Package store provides storage backends for DialogPipe.
//
// It includes an in-memory store for tests and ephemeral hosts, plus
// persistent SQLite and PostgreSQL backends. All backends implement the same
// generic key-value Storage contract the dialog engine persists its state
// through.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Storage is the generic key-value persistence contract consumed by the
// dialog engine. Records are opaque JSON-serializable maps stored under
// caller-chosen keys.
type Storage interface {
	// Read retrieves the records stored under the given keys. Keys with no
	// stored record are absent from the returned map.
	Read(ctx context.Context, keys []string) (map[string]map[string]any, error)

	// Write stores or replaces the given records.
	Write(ctx context.Context, changes map[string]map[string]any) error

	// Delete removes the records stored under the given keys.
	Delete(ctx context.Context, keys []string) error
}

// InMemoryStore is a Storage backed by process memory. Records round-trip
// through JSON on write and read so callers observe the same serialization
// behavior as the database-backed stores.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]string
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]string)}
}

// Read retrieves records for the given keys.
func (s *InMemoryStore) Read(ctx context.Context, keys []string) (map[string]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]map[string]any)
	for _, key := range keys {
		raw, ok := s.records[key]
		if !ok {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			slog.Error("InMemoryStore Read unmarshal failed", "error", err, "key", key)
			return nil, fmt.Errorf("failed to decode record for key %s: %w", key, err)
		}
		result[key] = record
	}
	slog.Debug("InMemoryStore Read succeeded", "requested", len(keys), "found", len(result))
	return result, nil
}

// Write stores or replaces records.
func (s *InMemoryStore) Write(ctx context.Context, changes map[string]map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, record := range changes {
		raw, err := json.Marshal(record)
		if err != nil {
			slog.Error("InMemoryStore Write marshal failed", "error", err, "key", key)
			return fmt.Errorf("failed to encode record for key %s: %w", key, err)
		}
		s.records[key] = string(raw)
	}
	slog.Debug("InMemoryStore Write succeeded", "count", len(changes))
	return nil
}

// Delete removes records for the given keys.
func (s *InMemoryStore) Delete(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.records, key)
	}
	slog.Debug("InMemoryStore Delete succeeded", "count", len(keys))
	return nil
}
