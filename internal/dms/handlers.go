package dms

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/applyfast/cold-dm-tracker/internal/auth"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/applyfast/cold-dm-tracker/internal/models"
)

// dmRequest is the JSON body for create and update.
type dmRequest struct {
	Name         string `json:"name"`
	Platform     string `json:"platform"`
	FollowupDate string `json:"followup_date"` // YYYY-MM-DD
	Note         string `json:"note"`
}

// toInput parses the request. The follow-up date is a calendar date in the
// owner's timezone: parsing it there puts the stored instant inside the
// owner's local day, so a DM due "2025-06-02" is reminded on the owner's
// June 2nd regardless of their UTC offset.
func (r *dmRequest) toInput(loc *time.Location) (Input, error) {
	var in Input
	in.Name = r.Name
	in.Platform = models.Platform(r.Platform)
	in.Note = r.Note
	if r.FollowupDate != "" {
		d, err := time.ParseInLocation("2006-01-02", r.FollowupDate, loc)
		if err != nil {
			return in, &ValidationError{Field: "followup_date", Message: "Invalid date"}
		}
		in.FollowupDate = d
	}
	return in, nil
}

// ownerLoc resolves the user's timezone for date parsing; a bad stored zone
// falls back to UTC rather than blocking the write.
func ownerLoc(user *models.User) *time.Location {
	loc, err := user.Location()
	if err != nil {
		return time.UTC
	}
	return loc
}

type statusRequest struct {
	Status       string `json:"status"`
	ExtendByDays *int   `json:"extend_by_days"`
}

// ListHandler returns all DMs for the current user. Store failures degrade to
// an empty list so the page renders "no DMs" rather than an error.
func ListHandler(svc *Service, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		dms, err := svc.List(c.Request.Context(), user.ID)
		if err != nil {
			dms = []models.DM{}
		}
		c.JSON(http.StatusOK, dms)
	}
}

// CreateHandler logs a new DM.
func CreateHandler(svc *Service, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		var req dmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		in, err := req.toInput(ownerLoc(user))
		if err != nil {
			writeError(c, err)
			return
		}
		dm, err := svc.Create(c.Request.Context(), user.ID, in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dm)
	}
}

// GetHandler returns a single DM scoped to the current user.
func GetHandler(svc *Service, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		dm, err := svc.Get(c.Request.Context(), user.ID, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dm)
	}
}

// UpdateHandler replaces the editable fields of a DM.
func UpdateHandler(svc *Service, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		var req dmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		in, err := req.toInput(ownerLoc(user))
		if err != nil {
			writeError(c, err)
			return
		}
		dm, err := svc.Update(c.Request.Context(), user.ID, c.Param("id"), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dm)
	}
}

// UpdateStatusHandler applies a status transition, optionally pushing the
// follow-up date out by N days.
func UpdateStatusHandler(svc *Service, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		dm, err := svc.UpdateStatus(c.Request.Context(), user.ID, c.Param("id"), models.Status(req.Status), req.ExtendByDays)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, dm)
	}
}

// DeleteHandler removes a DM permanently.
func DeleteHandler(svc *Service, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if err := svc.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// ExportHandler streams the user's DMs as a CSV download.
func ExportHandler(svc *Service, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.CurrentUser(c, db)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		filename := fmt.Sprintf("cold-dms-%s.csv", time.Now().Format("2006-01-02"))
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if err := svc.ExportCSV(c.Request.Context(), user.ID, c.Writer); err != nil {
			c.Status(http.StatusInternalServerError)
		}
	}
}

// writeError maps service errors to HTTP responses. Ownership misses and
// missing records share one generic message.
func writeError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "DM not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
