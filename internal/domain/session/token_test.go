package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/skycast/pkg/errors"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(Config{Secret: "test-secret", TokenTTL: time.Hour})
	clientID := NewClientID()

	token, err := issuer.Issue(clientID)
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, clientID, claims.ClientID)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestTokenIssuerRejectsForeignSecret(t *testing.T) {
	token, err := NewTokenIssuer(Config{Secret: "one"}).Issue("client-1")
	require.NoError(t, err)

	_, err = NewTokenIssuer(Config{Secret: "two"}).Parse(token)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer(Config{Secret: "s", TokenTTL: time.Minute})
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.Issue("client-1")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(token)
	require.Error(t, err)
}

func TestTokenIssuerRejectsEmpty(t *testing.T) {
	issuer := NewTokenIssuer(Config{Secret: "s"})
	_, err := issuer.Parse("  ")
	require.Error(t, err)
	_, err = issuer.Issue("")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestTokenCryptoRoundTrip(t *testing.T) {
	sealed, err := encryptToken("any length key", "refresh-123")
	require.NoError(t, err)
	require.NotContains(t, sealed, "refresh-123")

	plain, err := decryptToken("any length key", sealed)
	require.NoError(t, err)
	require.Equal(t, "refresh-123", plain)

	_, err = decryptToken("other key", sealed)
	require.Error(t, err)
}

func TestTokenCryptoEmpty(t *testing.T) {
	sealed, err := encryptToken("k", "")
	require.NoError(t, err)
	require.Empty(t, sealed)

	_, err = encryptToken("", "secret")
	require.Error(t, err)

	_, err = decryptToken("k", "AA")
	require.ErrorIs(t, err, errSealedTooShort)
}
