package identityrepo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yanqian/skycast/internal/domain/session"
	"github.com/yanqian/skycast/pkg/util"
)

// MemoryRepository keeps identities in memory for tests/dev.
type MemoryRepository struct {
	mu         sync.RWMutex
	identities map[string]session.Identity
	now        func() time.Time
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{identities: make(map[string]session.Identity), now: util.NowUTC}
}

// GetIdentity returns an identity by provider and subject.
func (r *MemoryRepository) GetIdentity(_ context.Context, provider, subject string) (session.Identity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.identities[identityKey(provider, subject)]
	return identity, ok, nil
}

// UpsertIdentity stores or updates the identity. An empty refresh token keeps the stored one.
func (r *MemoryRepository) UpsertIdentity(_ context.Context, identity session.Identity) (session.Identity, error) {
	if identity.Provider == "" || identity.Subject == "" {
		return session.Identity{}, errors.New("provider and subject are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := identityKey(identity.Provider, identity.Subject)
	if existing, ok := r.identities[key]; ok && identity.RefreshToken == "" {
		identity.RefreshToken = existing.RefreshToken
	}
	identity.UpdatedAt = r.now()
	r.identities[key] = identity
	return identity, nil
}

var _ session.IdentityRepository = (*MemoryRepository)(nil)

func identityKey(provider, subject string) string {
	return provider + ":" + subject
}
