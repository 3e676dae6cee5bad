package users

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/applyfast/cold-dm-tracker/internal/models"
	"github.com/applyfast/cold-dm-tracker/internal/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(t *testing.T, db *gorm.DB, email string, remindersEnabled bool) *models.User {
	t.Helper()
	u := models.User{
		Email:                 email,
		Timezone:              "America/New_York",
		EmailRemindersEnabled: remindersEnabled,
		Onboarded:             true,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &u
}

// asUser fakes an authenticated session for handlers downstream.
func asUser(email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_email", email)
		c.Next()
	}
}

func reload(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &u
}

func TestUnsubscribeIdempotent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)
	user := seedUser(t, db, "a@test.com", true)

	token, err := MintUnsubscribeToken("secret", user.ID)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	r := gin.New()
	r.GET("/unsubscribe", UnsubscribeHandler(db, "secret", discardLogger()))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/unsubscribe?token="+token, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("call %d: expected 200, got %d", i+1, w.Code)
		}
		if u := reload(t, db, user.ID); u.EmailRemindersEnabled {
			t.Fatalf("call %d: reminders still enabled", i+1)
		}
	}
}

func TestUnsubscribeRejectsBadTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)
	user := seedUser(t, db, "a@test.com", true)

	r := gin.New()
	r.GET("/unsubscribe", UnsubscribeHandler(db, "secret", discardLogger()))

	badToken, _ := MintUnsubscribeToken("other-secret", user.ID)
	for _, q := range []string{"", "?token=garbage", "?token=" + badToken} {
		req := httptest.NewRequest(http.MethodGet, "/unsubscribe"+q, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("query %q: expected 400, got %d", q, w.Code)
		}
	}
	if u := reload(t, db, user.ID); !u.EmailRemindersEnabled {
		t.Error("reminders disabled by invalid token")
	}
}

func TestMeDisablesRemindersViaQueryParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)
	user := seedUser(t, db, "a@test.com", true)

	r := gin.New()
	r.GET("/api/me", asUser(user.Email), MeHandler(db))

	// With the flag: reminders turn off before the profile is returned
	req := httptest.NewRequest(http.MethodGet, "/api/me?emailReminders=false", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var p struct {
		EmailRemindersEnabled bool `json:"email_reminders_enabled"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.EmailRemindersEnabled {
		t.Error("profile still shows reminders enabled")
	}
	if u := reload(t, db, user.ID); u.EmailRemindersEnabled {
		t.Error("reminders not disabled in store")
	}

	// Second request with the same flag is a no-op, not an error
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me?emailReminders=false", nil))
	if w.Code != http.StatusOK {
		t.Errorf("redundant disable: expected 200, got %d", w.Code)
	}
}

func TestUpdateSettings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)
	user := seedUser(t, db, "a@test.com", true)

	r := gin.New()
	r.PATCH("/api/me/settings", asUser(user.Email), UpdateSettingsHandler(db))

	body := `{"timezone":"Europe/Berlin","email_reminders_enabled":false}`
	req := httptest.NewRequest(http.MethodPatch, "/api/me/settings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	u := reload(t, db, user.ID)
	if u.Timezone != "Europe/Berlin" || u.EmailRemindersEnabled {
		t.Errorf("settings not applied: %+v", u)
	}
}

func TestUpdateSettingsRejectsInvalidTimezone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)
	user := seedUser(t, db, "a@test.com", true)

	r := gin.New()
	r.PATCH("/api/me/settings", asUser(user.Email), UpdateSettingsHandler(db))

	req := httptest.NewRequest(http.MethodPatch, "/api/me/settings", strings.NewReader(`{"timezone":"Mars/Olympus"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if u := reload(t, db, user.ID); u.Timezone != "America/New_York" {
		t.Errorf("invalid timezone stored: %s", u.Timezone)
	}
}

func TestConfirmTimezoneMarksOnboarded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)
	user := seedUser(t, db, "new@test.com", true)
	db.Model(user).Update("onboarded", false)

	r := gin.New()
	r.POST("/api/me/timezone", asUser(user.Email), ConfirmTimezoneHandler(db))

	req := httptest.NewRequest(http.MethodPost, "/api/me/timezone", strings.NewReader(`{"timezone":"Asia/Tokyo"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	u := reload(t, db, user.ID)
	if u.Timezone != "Asia/Tokyo" || !u.Onboarded {
		t.Errorf("onboarding not applied: %+v", u)
	}
}
