package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/skycast/internal/domain/session"
	"github.com/yanqian/skycast/internal/infra/identityrepo"
	"github.com/yanqian/skycast/internal/infra/sessionstore"
)

func TestRegistryReusesClient(t *testing.T) {
	registry, _ := newTestRegistry(Config{})

	first := registry.Client(context.Background(), "client-1")
	second := registry.Client(context.Background(), "client-1")
	other := registry.Client(context.Background(), "client-2")

	require.Same(t, first, second)
	require.NotSame(t, first, other)
	require.Equal(t, 2, registry.Len())
	require.Equal(t, "client-1", first.Session.ClientID())
}

func TestRegistrySignInReachesHome(t *testing.T) {
	registry, _ := newTestRegistry(Config{})
	client := registry.Client(context.Background(), "client-1")
	require.False(t, client.Home.Render().Authenticated)

	_, err := client.Session.SignIn(context.Background(), session.Credential{Code: "code", CodeVerifier: "verifier"})
	require.NoError(t, err)

	screen := client.Home.Render()
	require.True(t, screen.Authenticated)
	require.Equal(t, "Ada Lovelace", screen.DisplayName)
	require.True(t, screen.RequestLocation)

	client.Session.SignOut(context.Background())
	require.False(t, client.Home.Render().Authenticated)
}

// A swept client keeps its session but mounts a fresh home view, which asks
// for the position again, just like a page reload.
func TestRegistrySweepRestoresFromStore(t *testing.T) {
	registry, _ := newTestRegistry(Config{ClientIdleTTL: time.Minute})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return now }

	client := registry.Client(context.Background(), "client-1")
	_, err := client.Session.SignIn(context.Background(), session.Credential{Code: "code", CodeVerifier: "verifier"})
	require.NoError(t, err)
	client.Home.ApplyPositionError(PositionDenied)
	require.False(t, client.Home.Render().RequestLocation)

	now = now.Add(30 * time.Second)
	require.Zero(t, registry.Sweep())

	now = now.Add(2 * time.Minute)
	require.Equal(t, 1, registry.Sweep())
	require.Zero(t, registry.Len())

	restored := registry.Client(context.Background(), "client-1")
	require.NotSame(t, client, restored)
	require.True(t, restored.Session.Current().IsAuthenticated())
	screen := restored.Home.Render()
	require.True(t, screen.Authenticated)
	require.True(t, screen.RequestLocation)
	require.Equal(t, PhaseIdle, screen.State.Phase)
}

func TestRegistrySweepDisabledWithoutTTL(t *testing.T) {
	registry, _ := newTestRegistry(Config{})
	registry.Client(context.Background(), "client-1")
	require.Zero(t, registry.Sweep())
	require.Equal(t, 1, registry.Len())
}

func TestRegistryProtectedDelayDefault(t *testing.T) {
	registry, _ := newTestRegistry(Config{})
	client := registry.Client(context.Background(), "client-1")
	require.Equal(t, DefaultProtectedDelay, client.Profile.delay)

	disabled, _ := newTestRegistry(Config{ProtectedDelay: -1})
	require.Zero(t, disabled.Client(context.Background(), "client-1").Profile.delay)
}

func newTestRegistry(cfg Config) (*Registry, *stubFetcher) {
	fetcher := &stubFetcher{cityReading: parisReading}
	factory := session.NewFactory(
		session.Config{SessionTTL: time.Hour},
		registryIdentityProvider{},
		identityrepo.NewMemoryRepository(),
		sessionstore.NewMemoryStore(),
		newTestLogger(),
	)
	return NewRegistry(cfg, factory, fetcher, newTestLogger()), fetcher
}

type registryIdentityProvider struct{}

func (registryIdentityProvider) Name() string { return "google" }

func (registryIdentityProvider) AuthURL(context.Context, string, string) (string, error) {
	return "https://accounts.example.com/auth", nil
}

func (registryIdentityProvider) Exchange(context.Context, session.Credential) (session.Identity, error) {
	return session.Identity{Provider: "google", Subject: "sub-1", DisplayName: "Ada Lovelace"}, nil
}

func (registryIdentityProvider) Revoke(context.Context, string) error { return nil }
