package testutil

import (
	"testing"

	"github.com/t-finder/t-finder-api/middleware"
	"github.com/t-finder/t-finder-api/models"
	"gorm.io/gorm"
)

// IssueToken signs a real token for the user, the same way login does.
// SetupTestConfig must have been called first.
func IssueToken(t *testing.T, userID uint, role string) string {
	t.Helper()

	token, err := middleware.GenerateToken(userID, role)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return token
}

// CreateUser inserts a user account and returns it with a signed token
func CreateUser(t *testing.T, db *gorm.DB, name, email, role string) (models.User, string) {
	t.Helper()

	user := models.User{
		Name:     name,
		Email:    email,
		Password: "not-a-real-hash",
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user, IssueToken(t, user.ID, user.Role)
}

// CreateTechnician inserts a technician account with a profile in the given
// category and returns the profile plus a signed token for its user
func CreateTechnician(t *testing.T, db *gorm.DB, name, email string, category models.Category, city string, hourlyRate float64) (models.Technician, string) {
	t.Helper()

	user, token := CreateUser(t, db, name, email, models.RoleTechnician)

	technician := models.Technician{
		UserID:     user.ID,
		CategoryID: category.ID,
		City:       city,
		Phone:      "9876543210",
		Bio:        "Test technician",
		Skills:     []string{"general"},
		Experience: 5,
		HourlyRate: hourlyRate,
	}
	if err := db.Create(&technician).Error; err != nil {
		t.Fatalf("Failed to create test technician: %v", err)
	}
	technician.User = user

	return technician, token
}

// CreateCategory inserts a service category
func CreateCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()

	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return category
}
