package reminders

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/applyfast/cold-dm-tracker/internal/mailer"
	"github.com/applyfast/cold-dm-tracker/internal/models"
	"github.com/applyfast/cold-dm-tracker/internal/users"
)

var reminderTemplate = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="font-size: 24px; margin-bottom: 20px;">Your Daily DM Follow-ups</h1>
    <p style="font-size: 16px; margin-bottom: 20px;">Hi {{.UserName}},</p>
    <p style="font-size: 16px; margin-bottom: 20px;">You have <strong>{{.Count}}</strong> DM{{.Plural}} due for follow-up today:</p>
    <div style="margin-bottom: 30px;">
      {{range .DMs}}
      <div style="border: 1px solid #e0e0e0; border-radius: 8px; padding: 15px; margin-bottom: 15px;">
        <h3 style="font-size: 18px; margin-bottom: 8px; margin-top: 0;">{{.Name}}</h3>
        <p style="font-size: 14px; color: #666; margin-bottom: 8px;">Platform: {{.Platform}}</p>
        {{if .Note}}<p style="font-size: 14px; color: #666; margin-top: 8px;">Note: {{.Note}}</p>{{end}}
      </div>
      {{end}}
    </div>
    <div style="margin-bottom: 30px;">
      <a href="{{.DashboardURL}}" style="display: inline-block; background-color: #000; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 6px;">View Dashboard</a>
    </div>
    <hr style="border: none; border-top: 1px solid #e0e0e0; margin: 30px 0;" />
    <p style="font-size: 12px; color: #999;"><a href="{{.UnsubscribeURL}}" style="color: #999;">Turn off daily emails</a></p>
  </body>
</html>`))

type reminderData struct {
	UserName       string
	Count          int
	Plural         string
	DMs            []models.DM
	DashboardURL   string
	UnsubscribeURL string
}

// buildEmail renders the reminder for u's due set. The greeting uses the
// email local-part; the unsubscribe link carries a signed capability token.
func (e *Engine) buildEmail(u *models.User, due []models.DM) (mailer.Message, error) {
	token, err := users.MintUnsubscribeToken(e.cfg.UnsubscribeSecret, u.ID)
	if err != nil {
		return mailer.Message{}, err
	}

	plural := ""
	if len(due) != 1 {
		plural = "s"
	}
	data := reminderData{
		UserName:       strings.SplitN(u.Email, "@", 2)[0],
		Count:          len(due),
		Plural:         plural,
		DMs:            due,
		DashboardURL:   e.cfg.BaseURL + "/dashboard",
		UnsubscribeURL: fmt.Sprintf("%s/unsubscribe?token=%s", e.cfg.BaseURL, token),
	}

	var buf bytes.Buffer
	if err := reminderTemplate.Execute(&buf, data); err != nil {
		return mailer.Message{}, err
	}

	return mailer.Message{
		From:    e.cfg.From,
		To:      u.Email,
		Subject: fmt.Sprintf("You have %d DM%s due for follow-up today", len(due), plural),
		HTML:    buf.String(),
	}, nil
}
