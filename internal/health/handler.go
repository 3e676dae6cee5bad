package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler reports process liveness.
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
