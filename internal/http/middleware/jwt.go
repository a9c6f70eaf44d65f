package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// PlayerKey is the gin context key holding the authenticated player id.
const PlayerKey = "player_id"

// Authenticator resolves a bearer token to a player.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// JWT requires "Authorization: Bearer <token>" and stores the player id.
func JWT(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		playerID, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(PlayerKey, playerID)
		c.Next()
	}
}
