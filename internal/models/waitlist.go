package models

import "gorm.io/gorm"

// WaitlistEntry is a pre-launch signup. Emails are stored lowercased and
// deduplicated at the database level.
type WaitlistEntry struct {
	gorm.Model
	Email string `gorm:"uniqueIndex;not null"`
}

func (WaitlistEntry) TableName() string { return "waitlist" }
