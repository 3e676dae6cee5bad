package auth

import (
	"log"
	"net/http"
	"time"

	"github.com/applyfast/cold-dm-tracker/internal/models"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
	"gorm.io/gorm"
)

// HandleLogin initiates the Google OAuth flow.
func HandleLogin(c *gin.Context) {
	// Gothic requires the "provider" query parameter
	q := c.Request.URL.Query()
	q.Add("provider", "google")
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// HandleCallback completes the OAuth flow, upserts the user, and stores info
// in the session. New users get their timezone from the "tz" cookie the login
// page sets from the browser, falling back to the default.
func HandleCallback(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		q.Add("provider", "google")
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			log.Printf("Auth error: %v", err)
			c.Redirect(http.StatusFound, "/login?error=auth_failed")
			return
		}

		user, err := EnsureUser(db, gothUser.Email, gothUser.Name, detectedTimezone(c))
		if err != nil {
			log.Printf("User upsert error: %v", err)
			c.Redirect(http.StatusFound, "/login?error=user_failed")
			return
		}

		session := sessions.Default(c)
		session.Set("user_id", user.ID)
		session.Set("user_email", user.Email)
		session.Set("user_name", user.Name)

		if err := session.Save(); err != nil {
			log.Printf("Session save error: %v", err)
			c.Redirect(http.StatusFound, "/login?error=session_failed")
			return
		}

		log.Printf("User authenticated: %s (%s)", user.Name, user.Email)
		if !user.Onboarded {
			c.Redirect(http.StatusFound, "/onboarding")
			return
		}
		c.Redirect(http.StatusFound, "/dashboard")
	}
}

// HandleLogout clears the session and redirects to login.
func HandleLogout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()

	if err := session.Save(); err != nil {
		log.Printf("Session clear error: %v", err)
	}

	c.Redirect(http.StatusFound, "/login")
}

// EnsureUser finds a user by email or creates one with reminders enabled and
// onboarding pending. Existing users get their name and last login refreshed.
func EnsureUser(db *gorm.DB, email, name, timezone string) (*models.User, error) {
	now := time.Now()

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		if uerr := db.Model(&user).Updates(map[string]interface{}{
			"name":          name,
			"last_login_at": now,
		}).Error; uerr != nil {
			return nil, uerr
		}
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = models.User{
		Email:                 email,
		Name:                  name,
		Timezone:              timezone,
		EmailRemindersEnabled: true,
		Onboarded:             false,
		LastLoginAt:           &now,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// detectedTimezone reads the browser-detected zone from the "tz" cookie and
// validates it against the tz database.
func detectedTimezone(c *gin.Context) string {
	tz, err := c.Cookie("tz")
	if err != nil || tz == "" {
		return models.DefaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return models.DefaultTimezone
	}
	return tz
}
