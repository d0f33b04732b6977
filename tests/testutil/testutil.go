package testutil

import (
	"os"
	"testing"

	"github.com/t-finder/t-finder-api/config"
	"github.com/t-finder/t-finder-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// RequireTestEnvironment fails the test unless GO_ENV=test, so suites that
// touch shared configuration never run against a real database by accident.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("refusing to run: GO_ENV=%q (want \"test\")", env)
	}
}

// SetupTestDB opens an in-memory sqlite database with the full schema and
// installs it as the global connection
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Technician{},
		&models.Booking{},
		&models.Review{},
		&models.Appointment{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	return db
}

// SetupTestConfig installs a configuration with a known JWT secret and
// returns it
func SetupTestConfig() *config.Config {
	cfg := &config.Config{
		DatabaseURL: "sqlite::memory:",
		Port:        "8080",
		GoEnv:       "test",
		JWTSecret:   "integration-test-secret",
		CORSOrigin:  "*",
	}
	config.SetConfig(cfg)
	return cfg
}
