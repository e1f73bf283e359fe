package identityrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/skycast/internal/domain/session"
)

func TestMemoryRepositoryUpsertKeepsRefreshToken(t *testing.T) {
	repo := NewMemoryRepository()
	stamp := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return stamp }
	ctx := context.Background()

	_, err := repo.UpsertIdentity(ctx, session.Identity{Provider: "google", Subject: "1", DisplayName: "Ada", RefreshToken: "sealed"})
	require.NoError(t, err)
	_, err = repo.UpsertIdentity(ctx, session.Identity{Provider: "google", Subject: "1", DisplayName: "Ada L"})
	require.NoError(t, err)

	got, found, err := repo.GetIdentity(ctx, "google", "1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Ada L", got.DisplayName)
	require.Equal(t, "sealed", got.RefreshToken)
	require.Equal(t, stamp, got.UpdatedAt)
}

func TestMemoryRepositoryRequiresKey(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.UpsertIdentity(context.Background(), session.Identity{Provider: "google"})
	require.Error(t, err)

	_, found, err := repo.GetIdentity(context.Background(), "google", "missing")
	require.NoError(t, err)
	require.False(t, found)
}
