package reminders

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/applyfast/cold-dm-tracker/internal/testutil"
	"github.com/gin-gonic/gin"
)

func newTriggerRouter(t *testing.T, secret string, sender *fakeSender) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenDB(t)
	engine := newTestEngine(db, sender, nil)

	r := gin.New()
	r.GET("/api/cron/reminders", TriggerHandler(secret, engine))
	return r
}

func TestTriggerRejectsBadSecret(t *testing.T) {
	sender := &fakeSender{}
	r := newTriggerRouter(t, "cron-secret", sender)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong secret", "Bearer wrong"},
		{"no bearer prefix", "cron-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cron/reminders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
			if len(sender.sent) != 0 {
				t.Error("work performed despite rejected trigger")
			}
		})
	}
}

func TestTriggerRunsWithValidSecret(t *testing.T) {
	sender := &fakeSender{}
	r := newTriggerRouter(t, "cron-secret", sender)

	req := httptest.NewRequest(http.MethodGet, "/api/cron/reminders", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Success    bool `json:"success"`
		EmailsSent int  `json:"emailsSent"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Success {
		t.Error("expected success=true")
	}
	if body.EmailsSent != 0 {
		t.Errorf("expected 0 emails with empty store, got %d", body.EmailsSent)
	}
}
