// Package waitlist handles pre-launch signups and the welcome email.
package waitlist

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/applyfast/cold-dm-tracker/internal/mailer"
	"github.com/applyfast/cold-dm-tracker/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="font-size: 24px; margin-bottom: 20px;">Hey {{.FirstName}}!</h1>
    <p style="font-size: 16px; margin-bottom: 20px;">Thanks for joining the Cold DM Tracker waitlist.</p>
    <p style="font-size: 16px; margin-bottom: 20px;">You're now in line to get early access to the simplest way to track your cold DMs and never miss a follow-up.</p>
    <p style="font-size: 16px; margin-bottom: 20px;">You'll get an email as soon as we're ready to let you in. Early supporters get free access during beta.</p>
    <p style="font-size: 12px; color: #999;">Cold DM Tracker &bull; You received this because you signed up for the waitlist</p>
  </body>
</html>`))

type joinRequest struct {
	Email string `json:"email"`
}

// JoinHandler adds an email to the waitlist. Signing up twice is reported as
// success, and a welcome-email failure never fails the signup.
func JoinHandler(db *gorm.DB, sender mailer.Sender, from string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req joinRequest
		if err := c.ShouldBindJSON(&req); err != nil || !emailPattern.MatchString(req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Please enter a valid email address",
			})
			return
		}

		email := strings.ToLower(req.Email)

		var existing models.WaitlistEntry
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "You're already on the list! We'll be in touch soon.",
			})
			return
		}

		if err := db.Create(&models.WaitlistEntry{Email: email}).Error; err != nil {
			logger.Error("waitlist insert failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Something went wrong. Please try again.",
			})
			return
		}

		// Fire and forget; the signup already succeeded.
		go sendWelcome(sender, from, email, logger)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "You're on the list! We'll be in touch soon.",
		})
	}
}

func sendWelcome(sender mailer.Sender, from, email string, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var buf bytes.Buffer
	data := struct{ FirstName string }{FirstName: strings.SplitN(email, "@", 2)[0]}
	if err := welcomeTemplate.Execute(&buf, data); err != nil {
		logger.Error("failed to render welcome email", "error", err)
		return
	}

	msg := mailer.Message{
		From:    from,
		To:      email,
		Subject: "You're on the list!",
		HTML:    buf.String(),
	}
	if err := sender.Send(ctx, msg); err != nil {
		logger.Error(fmt.Sprintf("failed to send welcome email to %s", email), "error", err)
	}
}
