package session

import (
	"context"
	"time"
)

// Config drives session behavior.
type Config struct {
	Secret             string
	TokenTTL           time.Duration
	SessionTTL         time.Duration
	TokenEncryptionKey string
}

// User is the signed-in identity exposed to views.
type User struct {
	DisplayName    string `json:"displayName"`
	ProviderUserID string `json:"providerUserId"`
	Email          string `json:"email,omitempty"`
}

// Session is either unauthenticated (User == nil) or authenticated.
type Session struct {
	User *User `json:"user,omitempty"`
}

// Unauthenticated returns the signed-out session.
func Unauthenticated() Session {
	return Session{}
}

// Authenticated returns a signed-in session for user.
func Authenticated(user User) Session {
	return Session{User: &user}
}

// IsAuthenticated reports whether a user is signed in.
func (s Session) IsAuthenticated() bool {
	return s.User != nil
}

// DisplayName returns the user's display name or "".
func (s Session) DisplayName() string {
	if s.User == nil {
		return ""
	}
	return s.User.DisplayName
}

// Credential is the result of the interactive sign-in redirect.
type Credential struct {
	Code         string
	CodeVerifier string
}

// Identity is what the identity provider returns after a successful exchange.
type Identity struct {
	Provider     string
	Subject      string
	Email        string
	DisplayName  string
	RefreshToken string
	UpdatedAt    time.Time
}

// IdentityProvider is the third-party sign-in boundary.
type IdentityProvider interface {
	Name() string
	AuthURL(ctx context.Context, state, codeChallenge string) (string, error)
	Exchange(ctx context.Context, cred Credential) (Identity, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// IdentityRepository records identities so sign-out can revoke provider tokens.
type IdentityRepository interface {
	UpsertIdentity(ctx context.Context, identity Identity) (Identity, error)
	GetIdentity(ctx context.Context, provider, subject string) (Identity, bool, error)
}

// Store persists the session per browser client.
type Store interface {
	Load(ctx context.Context, clientID string) (Session, bool, error)
	Save(ctx context.Context, clientID string, s Session, ttl time.Duration) error
	Delete(ctx context.Context, clientID string) error
}

// Listener receives the new session after every change.
type Listener func(Session)
