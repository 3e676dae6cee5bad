package reminders

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// TriggerHandler is the inbound scheduled-trigger endpoint. The caller
// authenticates with a bearer token that must exactly match the configured
// secret; unauthorized requests are rejected before any work happens.
func TriggerHandler(secret string, engine *Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if secret == "" || authHeader != "Bearer "+secret {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		sent, err := engine.Run(c.Request.Context(), time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"emailsSent": sent,
			"message":    fmt.Sprintf("Sent %d reminder emails", sent),
		})
	}
}
