package api

import (
	"net/http"
	"strings"

	"github.com/dcastano/aeroops/internal/token"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware rejects requests without a valid bearer token and exposes
// the identifier and role to downstream handlers.
func AuthMiddleware(signer *token.JWTSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := signer.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set("identifier", claims.Identifier)
		c.Set("role", claims.Role)
		c.Next()
	}
}
