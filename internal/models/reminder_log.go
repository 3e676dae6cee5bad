package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReminderLog records one reminder email that was actually sent: which user,
// on which calendar date in their timezone, and a snapshot of the due DMs the
// email listed. It is an audit record; send deduplication is handled upstream.
type ReminderLog struct {
	gorm.Model
	UserID    uint           `gorm:"not null;index"`
	User      User           `gorm:"constraint:OnDelete:CASCADE;"`
	LocalDate string         `gorm:"not null;index"` // YYYY-MM-DD in the user's zone
	DMCount   int            `gorm:"not null"`
	DMs       datatypes.JSON `gorm:"type:jsonb"`
}
