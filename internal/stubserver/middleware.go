package stubserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/nutriplan/internal/api"
	"github.com/pageza/nutriplan/internal/identity"
)

const uidKey = "uid"

// TokenValidator is an interface for validating ID tokens
type TokenValidator interface {
	ValidateToken(token string) (*identity.Claims, error)
}

var _ TokenValidator = (*Identity)(nil)

// AuthMiddleware rejects requests without a valid bearer token
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(uidKey, claims.UserID)
		c.Next()
	}
}

// RequestID echoes the caller's request id, minting one when absent
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(api.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(api.RequestIDHeader, id)
		c.Next()
	}
}
