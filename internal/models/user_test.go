package models_test

import (
	"testing"

	"github.com/applyfast/cold-dm-tracker/internal/models"
	"github.com/applyfast/cold-dm-tracker/internal/testutil"
)

func TestUserCreatedWithRemindersDisabledStaysDisabled(t *testing.T) {
	db := testutil.OpenDB(t)

	u := models.User{
		Email:                 "off@test.com",
		Timezone:              models.DefaultTimezone,
		EmailRemindersEnabled: false,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	var got models.User
	if err := db.First(&got, u.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if got.EmailRemindersEnabled {
		t.Error("user created with reminders disabled came back enabled")
	}
}
