// Package reminders implements the daily reminder selection engine: once per
// trigger it decides, for every user with reminders enabled, whether "now" is
// their local send hour, which of their Waiting DMs fall in today's due
// window, and hands the result to the mailer.
package reminders

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/applyfast/cold-dm-tracker/internal/mailer"
	"github.com/applyfast/cold-dm-tracker/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultSendHour is the local hour reminder emails go out.
const DefaultSendHour = 8

// Marker claims an at-most-once-per-local-day send slot for a user. Claim
// returns false when the slot was already taken by an earlier run in the same
// day; Release undoes a claim after a failed send so a later run can retry.
type Marker interface {
	Claim(ctx context.Context, userID uint, localDate string) (bool, error)
	Release(ctx context.Context, userID uint, localDate string)
}

// Config carries the engine's tunables.
type Config struct {
	BaseURL           string
	From              string
	SendHour          int
	SendTimeout       time.Duration
	UnsubscribeSecret string
}

// Engine selects reminder recipients and dispatches their emails. Users are
// processed independently; one user's failure never aborts the run.
type Engine struct {
	db      *gorm.DB
	sender  mailer.Sender
	markers Marker // nil disables dedup, leaving only the hour gate
	logger  *slog.Logger
	cfg     Config
}

func NewEngine(db *gorm.DB, sender mailer.Sender, markers Marker, logger *slog.Logger, cfg Config) *Engine {
	if cfg.SendHour == 0 {
		cfg.SendHour = DefaultSendHour
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	return &Engine{db: db, sender: sender, markers: markers, logger: logger, cfg: cfg}
}

// Run evaluates every reminder-enabled user against the invocation instant
// and returns the number of emails sent. The external trigger must fire at
// least once per hour so every timezone's send-hour boundary is caught.
func (e *Engine) Run(ctx context.Context, now time.Time) (int, error) {
	var users []models.User
	err := e.db.WithContext(ctx).
		Where("email_reminders_enabled = ?", true).
		Preload("DMs", "status = ?", models.StatusWaiting).
		Find(&users).Error
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range users {
		if e.processUser(ctx, now, &users[i]) {
			sent++
		}
	}

	e.logger.Info("reminder run completed", "users_considered", len(users), "emails_sent", sent)
	return sent, nil
}

// processUser reports whether a reminder email was sent to u.
func (e *Engine) processUser(ctx context.Context, now time.Time, u *models.User) bool {
	loc, err := u.Location()
	if err != nil {
		e.logger.Warn("invalid timezone, skipping user", "user_id", u.ID, "timezone", u.Timezone)
		return false
	}

	local := now.In(loc)
	if local.Hour() != e.cfg.SendHour {
		return false
	}

	due := dueDMs(u.DMs, local, loc)
	if len(due) == 0 {
		return false
	}

	localDate := local.Format("2006-01-02")
	claimed := false
	if e.markers != nil {
		ok, err := e.markers.Claim(ctx, u.ID, localDate)
		if err != nil {
			// Redis being down shouldn't stop reminders; fall back to the
			// bare hour gate.
			e.logger.Warn("send marker unavailable", "user_id", u.ID, "error", err)
		} else if !ok {
			return false
		} else {
			claimed = true
		}
	}

	msg, err := e.buildEmail(u, due)
	if err != nil {
		e.logger.Error("failed to render reminder email", "user_id", u.ID, "error", err)
		e.releaseMarker(ctx, claimed, u.ID, localDate)
		return false
	}

	sendCtx, cancel := context.WithTimeout(ctx, e.cfg.SendTimeout)
	err = e.sender.Send(sendCtx, msg)
	cancel()
	if err != nil {
		e.logger.Error("failed to send reminder email", "user_id", u.ID, "error", err)
		e.releaseMarker(ctx, claimed, u.ID, localDate)
		return false
	}

	e.recordSend(ctx, u.ID, localDate, due)
	e.logger.Info("reminder sent", "user_id", u.ID, "due_count", len(due), "local_date", localDate)
	return true
}

// dueDMs filters Waiting DMs whose follow-up instant falls inside the user's
// local calendar day [midnight today, midnight tomorrow).
func dueDMs(dms []models.DM, local time.Time, loc *time.Location) []models.DM {
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	var due []models.DM
	for _, dm := range dms {
		if dm.Status != models.StatusWaiting {
			continue
		}
		if !dm.FollowupDate.Before(start) && dm.FollowupDate.Before(end) {
			due = append(due, dm)
		}
	}
	return due
}

func (e *Engine) releaseMarker(ctx context.Context, claimed bool, userID uint, localDate string) {
	if claimed && e.markers != nil {
		e.markers.Release(ctx, userID, localDate)
	}
}

// recordSend appends an audit row for the sent reminder. Failures here are
// logged only; the email already went out.
func (e *Engine) recordSend(ctx context.Context, userID uint, localDate string, due []models.DM) {
	type snapshot struct {
		Name     string `json:"name"`
		Platform string `json:"platform"`
		Note     string `json:"note,omitempty"`
	}
	snaps := make([]snapshot, 0, len(due))
	for _, dm := range due {
		snaps = append(snaps, snapshot{Name: dm.Name, Platform: string(dm.Platform), Note: dm.Note})
	}
	payload, err := json.Marshal(snaps)
	if err != nil {
		e.logger.Error("failed to marshal reminder snapshot", "user_id", userID, "error", err)
		payload = []byte("[]")
	}

	entry := models.ReminderLog{
		UserID:    userID,
		LocalDate: localDate,
		DMCount:   len(due),
		DMs:       datatypes.JSON(payload),
	}
	if err := e.db.WithContext(ctx).Create(&entry).Error; err != nil {
		e.logger.Error("failed to record reminder log", "user_id", userID, "error", err)
	}
}
