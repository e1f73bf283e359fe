package view

import (
	"context"
	"time"
)

// Access is the protected screen's state.
type Access string

const (
	AccessLoading      Access = "loading"
	AccessAuthorized   Access = "authorized"
	AccessUnauthorized Access = "unauthorized"
)

// DefaultProtectedDelay is the artificial pause before the protected screen settles.
const DefaultProtectedDelay = 50 * time.Millisecond

// ProtectedScreen is what the profile template renders.
type ProtectedScreen struct {
	Access      Access `json:"access"`
	DisplayName string `json:"displayName,omitempty"`
}

// Protected re-derives signed-in or not from the session after a fixed delay.
// It performs no real authorization check.
type Protected struct {
	sessions SessionSource
	delay    time.Duration
}

// NewProtected builds the protected screen.
func NewProtected(sessions SessionSource, delay time.Duration) *Protected {
	if delay < 0 {
		delay = 0
	}
	return &Protected{sessions: sessions, delay: delay}
}

// Resolve waits out the delay, then reads the session. A cancelled context leaves it loading.
func (p *Protected) Resolve(ctx context.Context) ProtectedScreen {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ProtectedScreen{Access: AccessLoading}
		case <-timer.C:
		}
	}
	current := p.sessions.Current()
	if !current.IsAuthenticated() {
		return ProtectedScreen{Access: AccessUnauthorized}
	}
	return ProtectedScreen{Access: AccessAuthorized, DisplayName: current.DisplayName()}
}
