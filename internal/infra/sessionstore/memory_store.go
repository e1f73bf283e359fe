package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/skycast/internal/domain/session"
)

type entry struct {
	session   session.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory for tests/dev.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]entry),
		now:   time.Now,
	}
}

// Load implements session.Store.
func (s *MemoryStore) Load(_ context.Context, clientID string) (session.Session, bool, error) {
	s.mu.RLock()
	item, ok := s.items[clientID]
	s.mu.RUnlock()
	if !ok {
		return session.Session{}, false, nil
	}
	if !item.expiresAt.IsZero() && s.now().After(item.expiresAt) {
		s.mu.Lock()
		delete(s.items, clientID)
		s.mu.Unlock()
		return session.Session{}, false, nil
	}
	return item.session, true, nil
}

// Save stores the session with an optional TTL.
func (s *MemoryStore) Save(_ context.Context, clientID string, sess session.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.items[clientID] = entry{session: sess, expiresAt: exp}
	return nil
}

// Delete removes the session for clientID.
func (s *MemoryStore) Delete(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, clientID)
	return nil
}

var _ session.Store = (*MemoryStore)(nil)
