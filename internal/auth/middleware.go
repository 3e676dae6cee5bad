package auth

import (
	"errors"
	"net/http"

	"github.com/applyfast/cold-dm-tracker/internal/models"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrNoSession is returned when no authenticated user is attached to the request.
var ErrNoSession = errors.New("no authenticated session")

// RequireAuth is a middleware that ensures the user is authenticated.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userEmail := session.Get("user_email")

		if userEmail == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		c.Set("user_id", session.Get("user_id"))
		c.Set("user_email", userEmail)
		c.Set("user_name", session.Get("user_name"))

		c.Next()
	}
}

// CurrentUser loads the database user for the authenticated session.
// Must be called downstream of RequireAuth.
func CurrentUser(c *gin.Context, db *gorm.DB) (*models.User, error) {
	email, exists := c.Get("user_email")
	if !exists {
		return nil, ErrNoSession
	}

	var user models.User
	if err := db.Where("email = ?", email.(string)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
