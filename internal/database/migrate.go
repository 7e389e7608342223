package database

import (
	"fmt"
	"log"

	"github.com/pageza/nutriplan/internal/preferences"
	"gorm.io/gorm"
)

// RunMigrations creates or updates the tables used by the client
func RunMigrations(db *gorm.DB) error {
	log.Printf("Using GORM auto-migration for %s", db.Dialector.Name())
	if err := db.AutoMigrate(&preferences.Entry{}); err != nil {
		return fmt.Errorf("failed to migrate preferences: %w", err)
	}
	return nil
}

// RollbackMigrations drops the tables created by RunMigrations
func RollbackMigrations(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&preferences.Entry{}); err != nil {
		return fmt.Errorf("failed to drop preferences: %w", err)
	}
	return nil
}
