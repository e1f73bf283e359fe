package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yanqian/skycast/internal/domain/view"
)

const (
	clientKey       = "view_client"
	clientIDKey     = "client_id"
	clientMintedKey = "client_minted"
)

func setClientID(c *gin.Context, clientID string, minted bool) {
	c.Set(clientIDKey, clientID)
	c.Set(clientMintedKey, minted)
}

// getClientID returns the resolved client id and whether this request minted it.
func getClientID(c *gin.Context) (string, bool, bool) {
	clientID := c.GetString(clientIDKey)
	if clientID == "" {
		return "", false, false
	}
	return clientID, c.GetBool(clientMintedKey), true
}

func setClient(c *gin.Context, client *view.Client) {
	c.Set(clientKey, client)
}

func getClient(c *gin.Context) (*view.Client, bool) {
	value, ok := c.Get(clientKey)
	if !ok {
		return nil, false
	}
	client, ok := value.(*view.Client)
	return client, ok && client != nil
}
