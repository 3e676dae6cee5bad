// Package testutil provides shared test fixtures.
package testutil

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/applyfast/cold-dm-tracker/internal/models"
)

// OpenDB returns an isolated in-memory database with the full schema applied.
// Each test gets its own named shared-cache database so pooled connections
// see the same data without leaking across tests.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.DM{},
		&models.WaitlistEntry{},
		&models.ReminderLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}
