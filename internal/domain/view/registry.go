package view

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yanqian/skycast/internal/domain/session"
)

// Config wires runtime settings for the view domain.
type Config struct {
	// ProtectedDelay of zero means DefaultProtectedDelay; negative disables the pause.
	ProtectedDelay time.Duration
	ClientIdleTTL  time.Duration
	SweepInterval  time.Duration
}

// Client is the per-browser composition: one session provider and its screens.
type Client struct {
	Session *session.Provider
	Home    *Home
	Profile *Protected

	lastSeen time.Time
}

// Registry hands out the Client for a browser client id, creating it on first use.
type Registry struct {
	cfg      Config
	sessions *session.Factory
	fetcher  Fetcher
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	clients map[string]*Client
}

// NewRegistry is used by Wire to build the client registry.
func NewRegistry(cfg Config, sessions *session.Factory, fetcher Fetcher, logger *slog.Logger) *Registry {
	if cfg.ProtectedDelay == 0 {
		cfg.ProtectedDelay = DefaultProtectedDelay
	}
	return &Registry{
		cfg:      cfg,
		sessions: sessions,
		fetcher:  fetcher,
		logger:   logger.With("component", "view.registry"),
		now:      time.Now,
		clients:  make(map[string]*Client),
	}
}

// Client returns the mounted client for clientID.
func (r *Registry) Client(ctx context.Context, clientID string) *Client {
	r.mu.Lock()
	if c, ok := r.clients[clientID]; ok {
		c.lastSeen = r.now()
		r.mu.Unlock()
		return c
	}
	r.mu.Unlock()

	// Restoring may hit the session store, so it runs outside the lock.
	provider := r.sessions.Restore(ctx, clientID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[clientID]; ok {
		c.lastSeen = r.now()
		return c
	}
	home := NewHome(provider, r.fetcher, r.logger)
	home.Mount()
	c := &Client{
		Session:  provider,
		Home:     home,
		Profile:  NewProtected(provider, r.cfg.ProtectedDelay),
		lastSeen: r.now(),
	}
	r.clients[clientID] = c
	return c
}

// IdentityProvider exposes the sign-in boundary for starting a redirect.
func (r *Registry) IdentityProvider() session.IdentityProvider {
	return r.sessions.IdentityProvider()
}

// Len reports how many clients are mounted.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Sweep unmounts clients idle for longer than the configured TTL.
// Their sessions stay in the store and are restored on the next request with a
// freshly mounted home view, so the one-shot geolocation request is offered again.
func (r *Registry) Sweep() int {
	if r.cfg.ClientIdleTTL <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.cfg.ClientIdleTTL)
	evicted := 0
	for id, c := range r.clients {
		if c.lastSeen.Before(cutoff) {
			c.Home.Unmount()
			delete(r.clients, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Info("idle clients evicted", "count", evicted, "remaining", len(r.clients))
	}
	return evicted
}

// Run sweeps idle clients until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	if r.cfg.ClientIdleTTL <= 0 || r.cfg.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
