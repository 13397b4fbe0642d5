package sessions

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory.
// Expired records are invisible to Get and removed by PurgeExpired.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Get loads a live session
func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	data, ok := s.records[id]
	exp := s.expires[id]
	s.mu.RUnlock()

	if !ok || !s.now().Before(exp) {
		return nil, ErrSessionNotFound
	}
	return decodeRecord(data)
}

// Put stores an encoded copy of the record
func (s *MemoryStore) Put(_ context.Context, rec *Record, ttl time.Duration) error {
	rec.ExpiresAt = s.now().UTC().Add(ttl)
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = data
	s.expires[rec.ID] = rec.ExpiresAt
	return nil
}

// Delete removes a session
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	delete(s.expires, id)
	return nil
}

// Count returns the number of unexpired sessions
func (s *MemoryStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	count := 0
	for _, exp := range s.expires {
		if now.Before(exp) {
			count++
		}
	}
	return count, nil
}

// PurgeExpired drops expired sessions and returns how many were removed
func (s *MemoryStore) PurgeExpired(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	purged := 0
	for id, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.records, id)
			delete(s.expires, id)
			purged++
		}
	}
	return purged, nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }
