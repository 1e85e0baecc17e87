// Package store provides test utilities for database testing.
package store

import (
	"os"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/pontohub/pontohub/internal/database"
	"github.com/pontohub/pontohub/internal/model"
)

// SetupTestDB creates a temporary SQLite database for testing.
// It returns a Store instance and a cleanup function.
// The cleanup function should be called with defer in tests.
func SetupTestDB(t *testing.T) (Store, func()) {
	// Reset database state to allow re-initialization
	database.ResetForTesting()

	// Create temporary database file
	tmpFile, err := os.CreateTemp("", "test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	// Initialize database with temp path
	if err := database.InitWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	db := database.Get()
	store := NewStore(db)

	// Cleanup function
	cleanup := func() {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
	}

	return store, cleanup
}

// SetupTestDBWithModels creates a temporary SQLite database and runs migrations.
// This is a convenience function that ensures all models are migrated.
func SetupTestDBWithModels(t *testing.T) (*gorm.DB, func()) {
	database.ResetForTesting()

	tmpFile, err := os.CreateTemp("", "test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	if err := database.InitWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	db := database.Get()

	models := model.AllModels()
	if err := db.AutoMigrate(models...); err != nil {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
		t.Fatalf("Failed to migrate models: %v", err)
	}

	cleanup := func() {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
	}

	return db, cleanup
}

// CreateTestRule creates a test ScheduleRule with default values.
// Fields can be overridden by passing a function that modifies the rule.
func CreateTestRule(t *testing.T, store Store, overrides ...func(*model.ScheduleRule)) *model.ScheduleRule {
	// Generate unique values to avoid UNIQUE constraint violations
	rule := &model.ScheduleRule{
		Name:      t.Name() + "-" + time.Now().Format("150405.000000"),
		Enabled:   true,
		Time:      "08:00",
		Frequency: model.FrequencyDaily,
		DateMode:  model.DateModeCurrentMonth,
		Reports:   model.IntArray{1},
	}

	// Apply overrides
	for _, override := range overrides {
		override(rule)
	}

	if err := store.Schedule().Create(rule); err != nil {
		t.Fatalf("Failed to create test rule: %v", err)
	}

	return rule
}
