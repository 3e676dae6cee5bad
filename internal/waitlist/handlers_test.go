package waitlist

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/applyfast/cold-dm-tracker/internal/mailer"
	"github.com/applyfast/cold-dm-tracker/internal/models"
	"github.com/applyfast/cold-dm-tracker/internal/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func newWaitlistRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := gin.New()
	r.POST("/api/waitlist", JoinHandler(db, &mailer.Stub{}, "Cold DM Tracker <hello@coldm.test>", logger))
	return r, db
}

func join(r *gin.Engine, email string) *httptest.ResponseRecorder {
	body := `{"email":"` + email + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/waitlist", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJoinRejectsInvalidEmail(t *testing.T) {
	r, db := newWaitlistRouter(t)

	for _, email := range []string{"", "nope", "a@b", "spaces in@example.com"} {
		if w := join(r, email); w.Code != http.StatusBadRequest {
			t.Errorf("email %q: expected 400, got %d", email, w.Code)
		}
	}

	var count int64
	db.Model(&models.WaitlistEntry{}).Count(&count)
	if count != 0 {
		t.Errorf("invalid emails persisted: %d rows", count)
	}
}

func TestJoinLowercasesAndStores(t *testing.T) {
	r, db := newWaitlistRouter(t)

	w := join(r, "Someone@Example.COM")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var entry models.WaitlistEntry
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.Email != "someone@example.com" {
		t.Errorf("expected lowercased email, got %q", entry.Email)
	}
}

func TestJoinTwiceIsStillSuccess(t *testing.T) {
	r, db := newWaitlistRouter(t)

	if w := join(r, "dup@example.com"); w.Code != http.StatusOK {
		t.Fatalf("first join: %d", w.Code)
	}
	w := join(r, "dup@example.com")
	if w.Code != http.StatusOK {
		t.Fatalf("second join: %d", w.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || !strings.Contains(body.Message, "already on the list") {
		t.Errorf("unexpected duplicate response: %+v", body)
	}

	var count int64
	db.Model(&models.WaitlistEntry{}).Count(&count)
	if count != 1 {
		t.Errorf("expected single row, got %d", count)
	}
}
