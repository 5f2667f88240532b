package cache

import (
	"context"
	"sync"
	"time"
)

// InMemorySnapshotStore implements SnapshotStore with a process-local map.
// Suitable for single-instance deployments and testing.
type InMemorySnapshotStore struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
	done    chan struct{}
	once    sync.Once
}

type inMemoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewInMemorySnapshotStore creates an in-memory snapshot store with a
// background sweeper that evicts expired entries.
func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	s := &InMemorySnapshotStore{
		entries: make(map[string]inMemoryEntry),
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *InMemorySnapshotStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, entry := range s.entries {
				if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Get fetches a snapshot, returning ErrSnapshotMiss when absent or expired
func (s *InMemorySnapshotStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSnapshotMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, ErrSnapshotMiss
	}

	// Copy so callers cannot mutate the cached bytes
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a snapshot with a TTL. A zero TTL means no expiration.
func (s *InMemorySnapshotStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := inMemoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// Delete removes a snapshot
func (s *InMemorySnapshotStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Close stops the background sweeper
func (s *InMemorySnapshotStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

// Len returns the number of cached entries (for testing)
func (s *InMemorySnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure InMemorySnapshotStore implements SnapshotStore
var _ SnapshotStore = (*InMemorySnapshotStore)(nil)
