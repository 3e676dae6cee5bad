package database

import (
	"log"
	"time"

	"github.com/applyfast/cold-dm-tracker/internal/models"
	"gorm.io/gorm"
)

// SeedDevData populates the database with development test data.
// Idempotent: skips if data already exists.
func SeedDevData(db *gorm.DB) error {
	var existingUser models.User
	result := db.Where("email = ?", "dev@coldm.local").First(&existingUser)
	if result.Error == nil {
		log.Println("Seed data already exists, skipping")
		return nil
	}

	user := models.User{
		Email:                 "dev@coldm.local",
		Name:                  "Dev User",
		Timezone:              "America/Chicago",
		EmailRemindersEnabled: true,
		Onboarded:             true,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	now := time.Now()
	dms := []models.DM{
		{
			UserID:       user.ID,
			Name:         "Alex from Acme",
			Platform:     models.PlatformX,
			SentDate:     now.AddDate(0, 0, -3),
			FollowupDate: now,
			Status:       models.StatusWaiting,
			Note:         "Asked about pricing, said to ping back this week",
		},
		{
			UserID:       user.ID,
			Name:         "Jordan (recruiter)",
			Platform:     models.PlatformLinkedIn,
			SentDate:     now.AddDate(0, 0, -7),
			FollowupDate: now.AddDate(0, 0, 2),
			Status:       models.StatusInConversation,
		},
		{
			UserID:       user.ID,
			Name:         "Sam - indie founder",
			Platform:     models.PlatformX,
			SentDate:     now.AddDate(0, 0, -14),
			FollowupDate: now.AddDate(0, 0, -10),
			Status:       models.StatusWon,
			Note:         "Signed up for the beta",
		},
	}
	for i := range dms {
		if err := db.Create(&dms[i]).Error; err != nil {
			return err
		}
	}

	log.Println("Seeded dev data: 1 user, 3 DMs")
	return nil
}
