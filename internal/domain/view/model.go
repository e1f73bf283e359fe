package view

import (
	"context"

	"github.com/yanqian/skycast/internal/domain/session"
	"github.com/yanqian/skycast/internal/domain/weather"
)

// Messages shown when the browser cannot provide a position.
const (
	LocationUnavailableMessage    = "Unable to retrieve your location. Please enter a city name."
	GeolocationUnsupportedMessage = "Geolocation is not supported by your browser. Please enter a city name."
)

// Phase is the lifecycle of the current weather lookup.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
)

// QueryState is Idle, Loading, Loaded(Reading) or Failed(Message).
type QueryState struct {
	Phase   Phase            `json:"phase"`
	Reading *weather.Reading `json:"reading,omitempty"`
	Message string           `json:"message,omitempty"`
}

func idle() QueryState    { return QueryState{Phase: PhaseIdle} }
func loading() QueryState { return QueryState{Phase: PhaseLoading} }

func loaded(r weather.Reading) QueryState {
	return QueryState{Phase: PhaseLoaded, Reading: &r}
}

func failed(message string) QueryState {
	return QueryState{Phase: PhaseFailed, Message: message}
}

// IsLoading is used by templates to disable the search button.
func (q QueryState) IsLoading() bool { return q.Phase == PhaseLoading }

// PositionError is the reason the browser reported for a failed geolocation.
type PositionError string

const (
	PositionDenied      PositionError = "denied"
	PositionUnavailable PositionError = "unavailable"
	PositionTimeout     PositionError = "timeout"
	PositionUnsupported PositionError = "unsupported"
)

// ParsePositionError maps the browser's report to a PositionError; unknown values count as unavailable.
func ParsePositionError(raw string) PositionError {
	switch PositionError(raw) {
	case PositionDenied, PositionTimeout, PositionUnsupported:
		return PositionError(raw)
	default:
		return PositionUnavailable
	}
}

// Screen is everything the home page template needs.
type Screen struct {
	Authenticated   bool       `json:"authenticated"`
	DisplayName     string     `json:"displayName,omitempty"`
	SearchInput     string     `json:"searchInput"`
	State           QueryState `json:"state"`
	RequestLocation bool       `json:"requestLocation"`
	SignInNotice    string     `json:"signInNotice,omitempty"`
}

// SessionSource is the part of the session provider a view observes.
type SessionSource interface {
	Current() session.Session
	Subscribe(fn session.Listener) func()
}

// Fetcher is the weather lookup a view drives.
type Fetcher interface {
	FetchByCoordinates(ctx context.Context, lat, lon float64) (weather.Reading, error)
	FetchByCityName(ctx context.Context, name string) (weather.Reading, error)
}
