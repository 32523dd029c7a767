package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/cadence/internal/util"
)

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and sets
// "user_id" and "username" on the context for the rest
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			util.RespondUnauthorized(c, "no token provided")
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			util.RespondUnauthorized(c, "invalid token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
