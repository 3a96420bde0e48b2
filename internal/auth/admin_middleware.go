package auth

import (
	"errors"
	"net/http"

	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CatalogAdminMiddleware lets through only accounts whose stored role is
// models.RoleCatalogAdmin. The role claim in the token is not trusted, so a
// demoted admin loses catalog access before the token expires.
// It must run after AuthMiddleware.
func CatalogAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var user models.User
		err := database.DB.Select("id", "role").First(&user, userID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		case err != nil:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check catalog access"})
			return
		}

		if user.Role != models.RoleCatalogAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Only catalog admins can change games and genres"})
			return
		}
		c.Next()
	}
}
