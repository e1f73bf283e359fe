package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/skycast/internal/domain/session"
)

func TestProtectedResolve(t *testing.T) {
	sessions := &fakeSessions{}
	protected := NewProtected(sessions, time.Millisecond)

	require.Equal(t, ProtectedScreen{Access: AccessUnauthorized}, protected.Resolve(context.Background()))

	sessions.set(signedIn("Ada"))
	require.Equal(t, ProtectedScreen{Access: AccessAuthorized, DisplayName: "Ada"}, protected.Resolve(context.Background()))
}

func TestProtectedWaitsForDelay(t *testing.T) {
	sessions := &fakeSessions{current: signedIn("Ada")}
	protected := NewProtected(sessions, 20*time.Millisecond)

	start := time.Now()
	screen := protected.Resolve(context.Background())
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	require.Equal(t, AccessAuthorized, screen.Access)
}

func TestProtectedCancelledStaysLoading(t *testing.T) {
	sessions := &fakeSessions{current: signedIn("Ada")}
	protected := NewProtected(sessions, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Equal(t, AccessLoading, protected.Resolve(ctx).Access)
}

func TestProtectedReadsSessionAfterDelay(t *testing.T) {
	sessions := &fakeSessions{current: signedIn("Ada")}
	protected := NewProtected(sessions, 30*time.Millisecond)

	go func() {
		time.Sleep(5 * time.Millisecond)
		sessions.set(session.Unauthenticated())
	}()

	require.Equal(t, AccessUnauthorized, protected.Resolve(context.Background()).Access)
}
