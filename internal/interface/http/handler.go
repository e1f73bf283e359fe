package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/skycast/internal/domain/session"
	"github.com/yanqian/skycast/internal/domain/view"
	"github.com/yanqian/skycast/internal/domain/weather"
	"github.com/yanqian/skycast/internal/infra/config"
	apperrors "github.com/yanqian/skycast/pkg/errors"
)

const signInFailedNotice = "Sign-in failed. Please try again."

// Handler wires the HTTP transport to the per-client views and the weather service.
type Handler struct {
	registry     *view.Registry
	tokens       *session.TokenIssuer
	weatherSvc   weather.Service
	cookieSecure bool
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, registry *view.Registry, tokens *session.TokenIssuer, weatherSvc weather.Service, logger *slog.Logger) *Handler {
	return &Handler{
		registry:     registry,
		tokens:       tokens,
		weatherSvc:   weatherSvc,
		cookieSecure: cfg.HTTP.CookieSecure,
		logger:       logger.With("component", "http.handler"),
	}
}

type homePage struct {
	Screen view.Screen
}

// Home renders the weather screen for the calling client.
func (h *Handler) Home(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "home.html", homePage{Screen: client.Home.Render()})
}

// Search submits the city form.
func (h *Handler) Search(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	city := c.PostForm("city")
	client.Home.SetSearchInput(city)
	client.Home.Submit(c.Request.Context(), city)
	c.Redirect(http.StatusSeeOther, "/")
}

// Location receives the browser's geolocation outcome.
func (h *Handler) Location(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	if reason := strings.TrimSpace(c.PostForm("error")); reason != "" {
		client.Home.ApplyPositionError(view.ParsePositionError(reason))
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	lat, latErr := strconv.ParseFloat(c.PostForm("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.PostForm("lon"), 64)
	if latErr != nil || lonErr != nil {
		h.logger.Warn("malformed position report", "lat", c.PostForm("lat"), "lon", c.PostForm("lon"))
		client.Home.ApplyPositionError(view.PositionUnavailable)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	client.Home.ApplyPosition(c.Request.Context(), lat, lon)
	c.Redirect(http.StatusSeeOther, "/")
}

// Profile renders the protected screen once its delay has passed.
func (h *Handler) Profile(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "profile.html", client.Profile.Resolve(c.Request.Context()))
}

// SignIn starts the identity provider redirect.
func (h *Handler) SignIn(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	state, verifier, challenge, err := session.NewSignInState()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "internal_error", "could not start sign-in", err))
		return
	}
	authURL, err := h.registry.IdentityProvider().AuthURL(c.Request.Context(), state, challenge)
	if err != nil {
		h.logger.Warn("sign-in unavailable", "error", err)
		client.Home.NoteSignInFailure(signInFailedNotice)
		c.Redirect(http.StatusFound, "/")
		return
	}
	setSignInStateCookie(c, h.cookieSecure, signInState{State: state, CodeVerifier: verifier})
	c.Redirect(http.StatusFound, authURL)
}

// SignInCallback completes the redirect and signs the client in.
func (h *Handler) SignInCallback(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	saved, found := readSignInStateCookie(c)
	clearSignInStateCookie(c, h.cookieSecure)

	switch {
	case c.Query("error") != "":
		h.logger.Info("sign-in cancelled by provider", "reason", c.Query("error"))
		client.Home.NoteSignInFailure(signInFailedNotice)
	case !found || saved.State != c.Query("state"):
		h.logger.Warn("sign-in state mismatch")
		client.Home.NoteSignInFailure(signInFailedNotice)
	default:
		cred := session.Credential{Code: c.Query("code"), CodeVerifier: saved.CodeVerifier}
		if _, err := client.Session.SignIn(c.Request.Context(), cred); err != nil {
			h.logger.Warn("sign-in failed", "code", apperrors.CodeOf(err), "error", err)
			client.Home.NoteSignInFailure(signInFailedNotice)
		}
	}
	c.Redirect(http.StatusFound, "/")
}

// SignOut clears the client's session.
func (h *Handler) SignOut(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	client.Session.SignOut(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	DisplayName   string `json:"displayName,omitempty"`
	Token         string `json:"token"`
}

// Session reports the client's session and a bearer token for API use.
func (h *Handler) Session(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	token, err := h.tokens.Issue(client.Session.ClientID())
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	current := client.Session.Current()
	c.JSON(http.StatusOK, sessionResponse{
		Authenticated: current.IsAuthenticated(),
		DisplayName:   current.DisplayName(),
		Token:         token,
	})
}

// Screen returns the home screen as JSON.
func (h *Handler) Screen(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, client.Home.Render())
}

type weatherResponse struct {
	weather.Reading
	Celsius    int `json:"celsius"`
	Fahrenheit int `json:"fahrenheit"`
}

// Weather looks up the current weather by city or coordinates without touching the home screen.
func (h *Handler) Weather(c *gin.Context) {
	var (
		reading weather.Reading
		err     error
	)
	ctx := c.Request.Context()
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		reading, err = h.weatherSvc.FetchByCityName(ctx, city)
	} else {
		lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
		if latErr != nil || lonErr != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "provide city or lat and lon", nil))
			return
		}
		reading, err = h.weatherSvc.FetchByCoordinates(ctx, lat, lon)
	}
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}
	c.JSON(http.StatusOK, weatherResponse{
		Reading:    reading,
		Celsius:    reading.CelsiusDisplay(),
		Fahrenheit: reading.FahrenheitDisplay(),
	})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": h.registry.Len()})
}

func (h *Handler) client(c *gin.Context) (*view.Client, bool) {
	client, ok := getClient(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "internal_error", "client not resolved", nil))
	}
	return client, ok
}
