package view

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/yanqian/skycast/internal/domain/session"
	"github.com/yanqian/skycast/internal/domain/weather"
	apperrors "github.com/yanqian/skycast/pkg/errors"
)

// Home drives the weather screen for one browser client.
//
// Every fetch takes a sequence number; a result is applied only if no newer
// fetch started and the session did not change in between.
type Home struct {
	sessions SessionSource
	fetcher  Fetcher
	logger   *slog.Logger

	mu                sync.Mutex
	current           session.Session
	input             string
	state             QueryState
	locationRequested bool
	awaitingLocation  bool
	signInNotice      string
	seq               uint64
	unsubscribe       func()
}

// NewHome builds an unmounted home view.
func NewHome(sessions SessionSource, fetcher Fetcher, logger *slog.Logger) *Home {
	return &Home{
		sessions: sessions,
		fetcher:  fetcher,
		logger:   logger.With("component", "view.home"),
		state:    idle(),
	}
}

// Mount subscribes to session changes and applies the current session.
func (h *Home) Mount() {
	h.mu.Lock()
	if h.unsubscribe != nil {
		h.mu.Unlock()
		return
	}
	h.unsubscribe = h.sessions.Subscribe(h.onSession)
	h.mu.Unlock()
	h.onSession(h.sessions.Current())
}

// Unmount stops observing the session.
func (h *Home) Unmount() {
	h.mu.Lock()
	unsubscribe := h.unsubscribe
	h.unsubscribe = nil
	h.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (h *Home) onSession(next session.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	wasAuthenticated := h.current.IsAuthenticated()
	h.current = next
	if !next.IsAuthenticated() {
		if wasAuthenticated {
			h.resetLocked()
		}
		return
	}
	h.signInNotice = ""
	if !h.locationRequested {
		h.awaitingLocation = true
	}
}

// resetLocked drops everything tied to the previous sign-in and fences in-flight fetches.
func (h *Home) resetLocked() {
	h.seq++
	h.state = idle()
	h.input = ""
	h.locationRequested = false
	h.awaitingLocation = false
}

// SetSearchInput records what the user typed without submitting it.
func (h *Home) SetSearchInput(value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.input = value
}

// Submit searches by city name. Blank input or a signed-out session is a no-op.
func (h *Home) Submit(ctx context.Context, input string) {
	city := strings.TrimSpace(input)
	if city == "" {
		return
	}
	seq, ok := h.begin(func() { h.input = input })
	if !ok {
		return
	}
	reading, err := h.fetcher.FetchByCityName(ctx, city)
	h.finish(seq, reading, err)
}

// ApplyPosition handles a successful geolocation report.
func (h *Home) ApplyPosition(ctx context.Context, lat, lon float64) {
	seq, ok := h.begin(func() {
		h.locationRequested = true
		h.awaitingLocation = false
	})
	if !ok {
		return
	}
	reading, err := h.fetcher.FetchByCoordinates(ctx, lat, lon)
	h.finish(seq, reading, err)
}

// ApplyPositionError handles a failed geolocation report. The attempt counts as made.
func (h *Home) ApplyPositionError(reason PositionError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.current.IsAuthenticated() {
		return
	}
	h.locationRequested = true
	h.awaitingLocation = false
	h.seq++
	message := LocationUnavailableMessage
	if reason == PositionUnsupported {
		message = GeolocationUnsupportedMessage
	}
	h.state = failed(message)
	code := apperrors.CodeGeolocationUnavailable
	if reason == PositionDenied {
		code = apperrors.CodeGeolocationDenied
	}
	h.logger.Info("geolocation failed", "reason", reason, "code", code)
}

// NoteSignInFailure shows a notice on the signed-out screen.
func (h *Home) NoteSignInFailure(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current.IsAuthenticated() {
		return
	}
	h.signInNotice = message
}

// Render snapshots the screen.
func (h *Home) Render() Screen {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.current.IsAuthenticated() {
		return Screen{SignInNotice: h.signInNotice, State: idle()}
	}
	return Screen{
		Authenticated:   true,
		DisplayName:     h.current.DisplayName(),
		SearchInput:     h.input,
		State:           h.state,
		RequestLocation: h.awaitingLocation,
	}
}

func (h *Home) begin(mutate func()) (uint64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.current.IsAuthenticated() {
		return 0, false
	}
	mutate()
	h.seq++
	h.state = loading()
	return h.seq, true
}

func (h *Home) finish(seq uint64, reading weather.Reading, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if seq != h.seq {
		h.logger.Debug("discarding superseded weather result", "seq", seq, "latest", h.seq)
		return
	}
	if err != nil {
		h.state = failed(apperrors.MessageOf(err))
		return
	}
	h.state = loaded(reading)
	h.input = reading.LocationName
}
