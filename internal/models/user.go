package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultTimezone is used when the client gives us nothing better.
// Matches the fallback the onboarding flow advertises.
const DefaultTimezone = "America/New_York"

// User represents an application user. Email is the join key to the external
// identity provider; we never store provider credentials.
type User struct {
	gorm.Model
	Email                 string `gorm:"uniqueIndex:idx_users_email_not_deleted,where:deleted_at IS NULL;not null"`
	Name                  string `gorm:"not null;default:''"`
	Timezone              string `gorm:"not null;default:'America/New_York'"`
	// No gorm default tag: gorm drops zero-valued fields that carry one, which
	// would silently turn a created-disabled user into an enabled one. The SQL
	// migration still defaults the column to TRUE for out-of-band inserts.
	EmailRemindersEnabled bool `gorm:"not null"`
	Onboarded             bool   `gorm:"not null;default:false"`
	LastLoginAt           *time.Time

	// Associations
	DMs          []DM          `gorm:"constraint:OnDelete:CASCADE;"`
	ReminderLogs []ReminderLog `gorm:"constraint:OnDelete:CASCADE;"`
}

// Location resolves the user's IANA timezone.
func (u *User) Location() (*time.Location, error) {
	return time.LoadLocation(u.Timezone)
}
