package google

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/skycast/internal/domain/session"
	apperrors "github.com/yanqian/skycast/pkg/errors"
)

func TestAuthURLCarriesPKCE(t *testing.T) {
	p := New(Config{ClientID: "client", ClientSecret: "secret", RedirectURL: "http://localhost:8080/auth/google/callback"}, newTestLogger())

	raw, err := p.AuthURL(context.Background(), "state-1", "challenge-1")
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	q := parsed.Query()
	require.Equal(t, "accounts.google.com", parsed.Host)
	require.Equal(t, "client", q.Get("client_id"))
	require.Equal(t, "state-1", q.Get("state"))
	require.Equal(t, "challenge-1", q.Get("code_challenge"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.Equal(t, "offline", q.Get("access_type"))
	require.Contains(t, q.Get("scope"), "openid")
}

func TestAuthURLNotConfigured(t *testing.T) {
	p := New(Config{}, newTestLogger())

	_, err := p.AuthURL(context.Background(), "s", "c")
	require.True(t, apperrors.IsCode(err, apperrors.CodeAuthNotConfigured))

	_, err = p.Exchange(context.Background(), session.Credential{Code: "c", CodeVerifier: "v"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeAuthNotConfigured))
}

func TestRevoke(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm.Get("token")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := New(Config{RevokeURL: server.URL}, newTestLogger())
	require.NoError(t, p.Revoke(context.Background(), "refresh-1"))
	require.Equal(t, "refresh-1", got)
	require.NoError(t, p.Revoke(context.Background(), ""))
}

func TestRevokeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	p := New(Config{RevokeURL: server.URL}, newTestLogger())
	require.Error(t, p.Revoke(context.Background(), "refresh-1"))
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Ada Lovelace", displayName(claims{Name: " Ada Lovelace ", GivenName: "Ada"}))
	require.Equal(t, "Ada", displayName(claims{GivenName: "Ada"}))
	require.Equal(t, "ada", displayName(claims{Email: "ada@example.com"}))
	require.Equal(t, "User", displayName(claims{}))
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
