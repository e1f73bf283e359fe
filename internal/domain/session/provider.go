package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	apperrors "github.com/yanqian/skycast/pkg/errors"
)

// Provider owns the authentication state of one browser client and pushes
// every change to its subscribers.
type Provider struct {
	clientID   string
	cfg        Config
	idp        IdentityProvider
	identities IdentityRepository
	store      Store
	logger     *slog.Logger

	mu        sync.Mutex
	current   Session
	listeners map[int]Listener
	order     []int
	nextID    int
	notifyMu  sync.Mutex
}

// Factory builds Providers that share the same collaborators.
type Factory struct {
	cfg        Config
	idp        IdentityProvider
	identities IdentityRepository
	store      Store
	logger     *slog.Logger
}

// NewFactory is used by Wire to share session collaborators.
func NewFactory(cfg Config, idp IdentityProvider, identities IdentityRepository, store Store, logger *slog.Logger) *Factory {
	return &Factory{
		cfg:        cfg,
		idp:        idp,
		identities: identities,
		store:      store,
		logger:     logger.With("component", "session.provider"),
	}
}

// Restore builds the Provider for clientID from the persisted session, if any.
func (f *Factory) Restore(ctx context.Context, clientID string) *Provider {
	p := &Provider{
		clientID:   clientID,
		cfg:        f.cfg,
		idp:        f.idp,
		identities: f.identities,
		store:      f.store,
		logger:     f.logger.With("client_id", clientID),
		listeners:  make(map[int]Listener),
	}
	saved, found, err := f.store.Load(ctx, clientID)
	if err != nil {
		p.logger.Warn("failed to load session, starting signed out", "error", err)
		return p
	}
	if found {
		p.current = saved
	}
	return p
}

// IdentityProvider exposes the sign-in boundary used to start a redirect.
func (f *Factory) IdentityProvider() IdentityProvider {
	return f.idp
}

// ClientID identifies the browser client this provider belongs to.
func (p *Provider) ClientID() string {
	return p.clientID
}

// Current returns the latest session value.
func (p *Provider) Current() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Subscribe registers fn and returns a func that removes it.
func (p *Provider) Subscribe(fn Listener) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.order = append(p.order, id)
	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.listeners, id)
			for i, candidate := range p.order {
				if candidate == id {
					p.order = append(p.order[:i], p.order[i+1:]...)
					break
				}
			}
		})
	}
}

// SignIn exchanges the redirect credential and marks the client authenticated.
// On failure the session stays unauthenticated and the error is returned.
func (p *Provider) SignIn(ctx context.Context, cred Credential) (Session, error) {
	if strings.TrimSpace(cred.Code) == "" || strings.TrimSpace(cred.CodeVerifier) == "" {
		return p.Current(), apperrors.Wrap(apperrors.CodeSignInFailed, "missing sign-in code or verifier", nil)
	}
	identity, err := p.idp.Exchange(ctx, cred)
	if err != nil {
		p.logger.Warn("sign-in exchange failed", "error", err)
		if apperrors.CodeOf(err) != "" {
			return p.Current(), err
		}
		return p.Current(), apperrors.Wrap(apperrors.CodeSignInFailed, "sign-in failed", err)
	}
	if err := p.recordIdentity(ctx, identity); err != nil {
		p.logger.Warn("failed to record identity", "provider", identity.Provider, "error", err)
	}

	next := Authenticated(User{
		DisplayName:    identity.DisplayName,
		ProviderUserID: identity.Subject,
		Email:          identity.Email,
	})
	if err := p.store.Save(ctx, p.clientID, next, p.cfg.SessionTTL); err != nil {
		p.logger.Warn("failed to persist session", "error", err)
	}
	p.set(next)
	p.logger.Info("signed in", "provider", identity.Provider, "subject", identity.Subject)
	return next, nil
}

// SignOut clears the session unconditionally, then revokes provider tokens best effort.
func (p *Provider) SignOut(ctx context.Context) {
	previous := p.Current()
	if err := p.store.Delete(ctx, p.clientID); err != nil {
		p.logger.Warn("failed to delete persisted session", "error", err)
	}
	p.set(Unauthenticated())
	if previous.IsAuthenticated() {
		p.logger.Info("signed out", "subject", previous.User.ProviderUserID)
		p.revoke(ctx, previous.User.ProviderUserID)
	}
}

func (p *Provider) set(next Session) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	p.current = next
	listeners := make([]Listener, 0, len(p.order))
	for _, id := range p.order {
		listeners = append(listeners, p.listeners[id])
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
}

func (p *Provider) recordIdentity(ctx context.Context, identity Identity) error {
	if p.identities == nil {
		return nil
	}
	encoded := ""
	if identity.RefreshToken != "" && p.cfg.TokenEncryptionKey != "" {
		ciphertext, err := encryptToken(p.cfg.TokenEncryptionKey, identity.RefreshToken)
		if err != nil {
			return err
		}
		encoded = ciphertext
	}
	identity.RefreshToken = encoded
	_, err := p.identities.UpsertIdentity(ctx, identity)
	return err
}

func (p *Provider) revoke(ctx context.Context, subject string) {
	if p.identities == nil {
		return
	}
	identity, found, err := p.identities.GetIdentity(ctx, p.idp.Name(), subject)
	if err != nil {
		p.logger.Warn("failed to fetch identity", "error", err)
		return
	}
	if !found || identity.RefreshToken == "" {
		return
	}
	refreshToken, err := decryptToken(p.cfg.TokenEncryptionKey, identity.RefreshToken)
	if err != nil {
		p.logger.Warn("failed to decrypt refresh token", "error", err)
		return
	}
	if err := p.idp.Revoke(ctx, refreshToken); err != nil {
		p.logger.Warn("failed to revoke refresh token", "error", err)
	}
}
