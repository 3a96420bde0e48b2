package auth

import (
	"net/http"
	"strings"

	"gameshelf/backend/internal/config"
	"gameshelf/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// Context keys set by the middlewares in this package.
const (
	UserIDKey   = "userID"
	UserNameKey = "userName"
)

// AuthMiddleware rejects requests without a valid bearer token and stores the
// authenticated user's id and name on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromRequest(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(UserNameKey, claims.Name)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id, if any.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func claimsFromRequest(c *gin.Context) (*jwt.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := jwt.ParseToken(config.AppConfig.JWTSecret, parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}
