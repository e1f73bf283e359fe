package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/skycast/internal/domain/session"
	"github.com/yanqian/skycast/internal/domain/view"
)

const clientCookieName = "skycast_client"

// identifyClient reads the client id from a bearer token or the signed cookie,
// minting a new id when neither is present. It does not touch the registry.
func identifyClient(tokens *session.TokenIssuer, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
				return
			}
			claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid token", err))
				return
			}
			setClientID(c, claims.ClientID, false)
			c.Next()
			return
		}

		if value, err := c.Cookie(clientCookieName); err == nil && value != "" {
			if claims, err := tokens.Parse(value); err == nil {
				setClientID(c, claims.ClientID, false)
				c.Next()
				return
			}
		}

		clientID := session.NewClientID()
		token, err := tokens.Issue(clientID)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "internal_error", "could not start session", err))
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(clientCookieName, token, int(tokens.TTL().Seconds()), "/", "", cookieSecure, true)
		setClientID(c, clientID, true)
		c.Next()
	}
}

// attachClient mounts the identified client's views from the registry.
func attachClient(registry *view.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, _, ok := getClientID(c)
		if !ok {
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "internal_error", "client not identified", nil))
			return
		}
		setClient(c, registry.Client(c.Request.Context(), clientID))
		c.Next()
	}
}

// requireSignedIn rejects API calls from clients that have not signed in.
func requireSignedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := getClient(c)
		if !ok || !client.Session.Current().IsAuthenticated() {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "sign in required", nil))
			return
		}
		c.Next()
	}
}
