package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	signInStateCookieName = "skycast_signin"
	signInStateMaxAge     = 300
)

// signInState survives the redirect to the identity provider and back.
type signInState struct {
	State        string `json:"state"`
	CodeVerifier string `json:"verifier"`
}

func setSignInStateCookie(c *gin.Context, secure bool, state signInState) {
	data, _ := json.Marshal(state)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(signInStateCookieName, base64.RawURLEncoding.EncodeToString(data), signInStateMaxAge, "/auth", "", secure, true)
}

func clearSignInStateCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(signInStateCookieName, "", -1, "/auth", "", secure, true)
}

func readSignInStateCookie(c *gin.Context) (signInState, bool) {
	value, err := c.Cookie(signInStateCookieName)
	if err != nil || value == "" {
		return signInState{}, false
	}
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return signInState{}, false
	}
	var payload signInState
	if err := json.Unmarshal(data, &payload); err != nil {
		return signInState{}, false
	}
	if payload.State == "" || payload.CodeVerifier == "" {
		return signInState{}, false
	}
	return payload, true
}
