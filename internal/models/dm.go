package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the follow-up lifecycle state of a DM. The set is closed; anything
// else is rejected before it reaches the database.
type Status string

const (
	StatusWaiting        Status = "Waiting"
	StatusInConversation Status = "In Conversation"
	StatusWon            Status = "Won"
	StatusLost           Status = "Lost"
)

// Valid reports whether s is one of the four allowed statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusInConversation, StatusWon, StatusLost:
		return true
	}
	return false
}

// Platform is the external platform the DM was sent on.
type Platform string

const (
	PlatformX        Platform = "X"
	PlatformLinkedIn Platform = "LinkedIn"
)

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformX, PlatformLinkedIn:
		return true
	}
	return false
}

// DM is a single logged outreach attempt with a scheduled follow-up.
// SentDate is set once at creation and never changes; FollowupDate advances
// as the owner extends the reminder. Deletes are hard deletes.
type DM struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	User         User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Name         string    `gorm:"not null" json:"name"`
	Platform     Platform  `gorm:"not null" json:"platform"`
	SentDate     time.Time `gorm:"not null" json:"sent_date"`
	FollowupDate time.Time `gorm:"not null;index" json:"followup_date"`
	Status       Status    `gorm:"not null;default:'Waiting';index" json:"status"`
	Note         string    `gorm:"type:text" json:"note"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns a record id when the caller did not.
func (d *DM) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
