package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/skycast/pkg/errors"
)

// TokenIssuer signs the client id carried by the session cookie and bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// ClientClaims are extracted from a verified client token.
type ClientClaims struct {
	ClientID  string
	ExpiresAt time.Time
}

type clientTokenClaims struct {
	jwt.RegisteredClaims
	ClientID string `json:"cid"`
}

// NewTokenIssuer builds an issuer from the session config.
func NewTokenIssuer(cfg Config) *TokenIssuer {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(cfg.Secret), ttl: ttl, now: time.Now}
}

// NewClientID returns a fresh random client id.
func NewClientID() string {
	return uuid.NewString()
}

// TTL is how long issued tokens stay valid.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for clientID.
func (t *TokenIssuer) Issue(clientID string) (string, error) {
	if strings.TrimSpace(clientID) == "" {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "client id cannot be empty", nil)
	}
	now := t.now()
	claims := clientTokenClaims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUnauthorized, "failed to sign token", err)
	}
	return signed, nil
}

// Parse verifies token and returns its claims.
func (t *TokenIssuer) Parse(token string) (ClientClaims, error) {
	if strings.TrimSpace(token) == "" {
		return ClientClaims{}, apperrors.Wrap(apperrors.CodeUnauthorized, "token missing", nil)
	}
	parsed, err := jwt.ParseWithClaims(token, &clientTokenClaims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", tok.Method.Alg())
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return ClientClaims{}, apperrors.Wrap(apperrors.CodeUnauthorized, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*clientTokenClaims)
	if !ok || !parsed.Valid || claims.ClientID == "" {
		return ClientClaims{}, apperrors.Wrap(apperrors.CodeUnauthorized, "token invalid", nil)
	}
	return ClientClaims{
		ClientID:  claims.ClientID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
