package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/pkg/logger"
)

func TestSQLiteOptimizations(t *testing.T) {
	// Initialize logger for testing
	logger.Init(logger.Config{
		Level:  "error",
		Format: "text",
		File:   "",
	})
	defer logger.Sync()

	ResetForTesting()

	// Create temporary database file
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	// Initialize database with custom path for testing
	err := InitWithPath(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		Close()
		os.Remove(dbPath)
		ResetForTesting()
	}()

	// Get database connection
	db := Get()

	// Check journal_mode (should be WAL)
	var journalMode string
	result := db.Raw("PRAGMA journal_mode").Scan(&journalMode)
	if result.Error != nil {
		t.Fatalf("Failed to query journal_mode: %v", result.Error)
	}
	if journalMode != "wal" {
		t.Errorf("Expected journal_mode to be 'wal', got '%s'", journalMode)
	}

	// Check synchronous (should be 1 for NORMAL)
	var synchronous int
	result = db.Raw("PRAGMA synchronous").Scan(&synchronous)
	if result.Error != nil {
		t.Fatalf("Failed to query synchronous: %v", result.Error)
	}
	if synchronous != 1 {
		t.Errorf("Expected synchronous to be 1 (NORMAL), got %d", synchronous)
	}

	// Check foreign_keys (should be ON)
	var foreignKeys int
	result = db.Raw("PRAGMA foreign_keys").Scan(&foreignKeys)
	if result.Error != nil {
		t.Fatalf("Failed to query foreign_keys: %v", result.Error)
	}
	if foreignKeys != 1 {
		t.Errorf("Expected foreign_keys to be 1 (ON), got %d", foreignKeys)
	}
}

func TestMigrateCreatesScheduleRules(t *testing.T) {
	logger.Init(logger.Config{
		Level:  "error",
		Format: "text",
	})
	defer logger.Sync()

	ResetForTesting()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "migrate.db")

	if err := InitWithPath(dbPath); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		Close()
		ResetForTesting()
	}()

	db := Get()
	if !db.Migrator().HasTable(&model.ScheduleRule{}) {
		t.Fatal("Expected schedule_rules table to exist after migration")
	}

	// A round trip through the migrated schema should succeed
	rule := &model.ScheduleRule{
		ID:        "test-rule-id",
		Name:      "daily reports",
		Enabled:   true,
		Time:      "08:00",
		Frequency: model.FrequencyDaily,
		DateMode:  model.DateModeCurrentMonth,
		Reports:   model.IntArray{1, 5},
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("Failed to insert schedule rule: %v", err)
	}

	var loaded model.ScheduleRule
	if err := db.First(&loaded, "id = ?", "test-rule-id").Error; err != nil {
		t.Fatalf("Failed to load schedule rule: %v", err)
	}
	if len(loaded.Reports) != 2 || loaded.Reports[0] != 1 || loaded.Reports[1] != 5 {
		t.Errorf("Expected reports [1 5], got %v", loaded.Reports)
	}
}

func TestHealthCheck(t *testing.T) {
	logger.Init(logger.Config{Level: "error", Format: "text"})
	defer logger.Sync()

	ResetForTesting()

	dbPath := filepath.Join(t.TempDir(), "health.db")
	if err := InitWithPath(dbPath); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		Close()
		ResetForTesting()
	}()

	if err := HealthCheck(); err != nil {
		t.Errorf("Expected health check to pass, got %v", err)
	}
}
