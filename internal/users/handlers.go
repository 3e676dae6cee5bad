// Package users covers account settings: timezone, reminder preferences,
// onboarding confirmation, and the unauthenticated unsubscribe capability.
package users

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/applyfast/cold-dm-tracker/internal/auth"
	"github.com/applyfast/cold-dm-tracker/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type profile struct {
	ID                    uint   `json:"id"`
	Email                 string `json:"email"`
	Name                  string `json:"name"`
	Timezone              string `json:"timezone"`
	EmailRemindersEnabled bool   `json:"email_reminders_enabled"`
	Onboarded             bool   `json:"onboarded"`
}

func toProfile(u *models.User) profile {
	return profile{
		ID:                    u.ID,
		Email:                 u.Email,
		Name:                  u.Name,
		Timezone:              u.Timezone,
		EmailRemindersEnabled: u.EmailRemindersEnabled,
		Onboarded:             u.Onboarded,
	}
}

// MeHandler returns the current user's profile. An `emailReminders=false`
// query parameter disables reminders before anything else runs; that is the
// path taken when a user lands on settings from an email link while already
// signed in, and it is idempotent.
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		if c.Query("emailReminders") == "false" && user.EmailRemindersEnabled {
			if err := db.Model(user).Update("email_reminders_enabled", false).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
				return
			}
			user.EmailRemindersEnabled = false
		}

		c.JSON(http.StatusOK, toProfile(user))
	}
}

type settingsRequest struct {
	Timezone              *string `json:"timezone"`
	EmailRemindersEnabled *bool   `json:"email_reminders_enabled"`
	Onboarded             *bool   `json:"onboarded"`
}

// UpdateSettingsHandler applies partial settings updates. Timezones are
// validated against the tz database before being stored.
func UpdateSettingsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		var req settingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		updates := map[string]interface{}{}
		if req.Timezone != nil {
			if _, err := time.LoadLocation(*req.Timezone); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timezone", "field": "timezone"})
				return
			}
			updates["timezone"] = *req.Timezone
		}
		if req.EmailRemindersEnabled != nil {
			updates["email_reminders_enabled"] = *req.EmailRemindersEnabled
		}
		if req.Onboarded != nil {
			updates["onboarded"] = *req.Onboarded
		}

		if len(updates) > 0 {
			if err := db.Model(user).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
				return
			}
		}

		var fresh models.User
		if err := db.First(&fresh, user.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
			return
		}
		c.JSON(http.StatusOK, toProfile(&fresh))
	}
}

type timezoneRequest struct {
	Timezone string `json:"timezone"`
}

// ConfirmTimezoneHandler is the onboarding step: the user confirms (or
// corrects) the auto-detected timezone, which also marks them onboarded.
func ConfirmTimezoneHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		var req timezoneRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Timezone == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Timezone is required", "field": "timezone"})
			return
		}
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid timezone", "field": "timezone"})
			return
		}

		if err := db.Model(user).Updates(map[string]interface{}{
			"timezone":  req.Timezone,
			"onboarded": true,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm timezone"})
			return
		}

		user.Timezone = req.Timezone
		user.Onboarded = true
		c.JSON(http.StatusOK, toProfile(user))
	}
}

// UnsubscribeHandler disables reminder emails for the user named by the
// capability token. No session required; redundant calls succeed the same
// way so the link in old emails keeps working.
func UnsubscribeHandler(db *gorm.DB, secret string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
			return
		}

		userID, err := ParseUnsubscribeToken(secret, token)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired link"})
			return
		}

		res := db.Model(&models.User{}).
			Where("id = ?", userID).
			Update("email_reminders_enabled", false)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
		if res.RowsAffected == 0 {
			// User deleted since the email went out; nothing to disable.
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Daily emails turned off."})
			return
		}

		logger.Info("user unsubscribed via email link", "user_id", userID)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Daily emails turned off. You can re-enable them in settings."})
	}
}
