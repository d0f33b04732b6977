package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/t-finder/t-finder-api/config"
	"github.com/t-finder/t-finder-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Technician{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// setupTestRouter returns a bare Gin engine in test mode
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setTestJWTConfig installs a config with a known signing secret so handlers
// that issue or verify tokens work without environment setup
func setTestJWTConfig() {
	config.SetConfig(&config.Config{
		DatabaseURL: "sqlite::memory:",
		Port:        "8080",
		GoEnv:       "test",
		JWTSecret:   "test-secret",
		CORSOrigin:  "*",
	})
}

// mockAuthMiddleware injects the caller identity the way RequireAuth does
func mockAuthMiddleware(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", role)
		c.Next()
	}
}

// hashPassword is a test helper for seeding users with a known password
func hashPassword(t *testing.T, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return string(hash)
}

func seedCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}
	return category
}

func TestRegister(t *testing.T) {
	db := setupAuthTestDB(t)
	config.SetDB(db)
	setTestJWTConfig()

	category := seedCategory(t, db, "Plumber")

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name: "Successfully register a user",
			requestBody: map[string]interface{}{
				"name":     "Asha Verma",
				"email":    "asha@example.com",
				"password": "secret123",
				"role":     "user",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.NotEmpty(t, data["token"])

				var user models.User
				err := db.Where("email = ?", "asha@example.com").First(&user).Error
				assert.NoError(t, err)
				assert.Equal(t, models.RoleUser, user.Role)
				assert.NotEqual(t, "secret123", user.Password, "password must be hashed")
			},
		},
		{
			name: "Successfully register a technician with profile",
			requestBody: map[string]interface{}{
				"name":       "Ravi Kumar",
				"email":      "ravi@example.com",
				"password":   "secret123",
				"role":       "technician",
				"categoryId": category.ID,
				"city":       "Mumbai",
				"state":      "Maharashtra",
				"phone":      "9876543210",
				"bio":        "Experienced plumber",
				"skills":     "pipes, fittings",
				"experience": 5,
				"hourlyRate": 500,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				var technician models.Technician
				err := db.Joins("User").Where("\"User\".email = ?", "ravi@example.com").First(&technician).Error
				assert.NoError(t, err)
				assert.Equal(t, "Mumbai", technician.City)
				assert.Equal(t, []string{"pipes", "fittings"}, technician.Skills)
				assert.Equal(t, 500.0, technician.HourlyRate)
			},
		},
		{
			name: "Fail with duplicate email",
			requestBody: map[string]interface{}{
				"name":     "Asha Again",
				"email":    "asha@example.com",
				"password": "secret123",
				"role":     "user",
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "EMAIL_EXISTS",
		},
		{
			name: "Fail with invalid email",
			requestBody: map[string]interface{}{
				"name":     "Bad Email",
				"email":    "not-an-email",
				"password": "secret123",
				"role":     "user",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with short password",
			requestBody: map[string]interface{}{
				"name":     "Short Pass",
				"email":    "short@example.com",
				"password": "abc",
				"role":     "user",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with unknown role",
			requestBody: map[string]interface{}{
				"name":     "Odd Role",
				"email":    "odd@example.com",
				"password": "secret123",
				"role":     "admin",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail technician registration without profile fields",
			requestBody: map[string]interface{}{
				"name":     "Bare Tech",
				"email":    "baretech@example.com",
				"password": "secret123",
				"role":     "technician",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				// The half-created account must not survive
				var count int64
				db.Unscoped().Model(&models.User{}).Where("email = ?", "baretech@example.com").Count(&count)
				assert.Equal(t, int64(0), count)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/api/users/register", Register)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/api/users/register", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}

			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestRegisterTechnician_ForcesRole(t *testing.T) {
	db := setupAuthTestDB(t)
	config.SetDB(db)
	setTestJWTConfig()

	category := seedCategory(t, db, "Electrician")

	router := setupTestRouter()
	router.POST("/api/technicians/register", RegisterTechnician)

	// Even with role "user" in the body, the endpoint creates a technician
	body, _ := json.Marshal(map[string]interface{}{
		"name":       "Meena Joshi",
		"email":      "meena@example.com",
		"password":   "secret123",
		"role":       "user",
		"categoryId": category.ID,
		"city":       "Pune",
		"phone":      "9876501234",
		"bio":        "Certified electrician",
		"skills":     "wiring",
		"experience": 3,
		"hourlyRate": 400,
	})
	req, _ := http.NewRequest(http.MethodPost, "/api/technicians/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	assert.NoError(t, db.Where("email = ?", "meena@example.com").First(&user).Error)
	assert.Equal(t, models.RoleTechnician, user.Role)
}

func TestLogin(t *testing.T) {
	db := setupAuthTestDB(t)
	config.SetDB(db)
	setTestJWTConfig()

	user := models.User{
		Name:     "Asha Verma",
		Email:    "asha@example.com",
		Password: hashPassword(t, "secret123"),
		Role:     models.RoleUser,
	}
	db.Create(&user)

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Successfully log in",
			requestBody: map[string]interface{}{
				"email":    "asha@example.com",
				"password": "secret123",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Fail with wrong password",
			requestBody: map[string]interface{}{
				"email":    "asha@example.com",
				"password": "wrong-password",
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "INVALID_CREDENTIALS",
		},
		{
			name: "Fail with unknown email",
			requestBody: map[string]interface{}{
				"email":    "nobody@example.com",
				"password": "secret123",
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "INVALID_CREDENTIALS",
		},
		{
			name: "Fail with missing password",
			requestBody: map[string]interface{}{
				"email": "asha@example.com",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/api/users/login", Login)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/api/users/login", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			} else {
				data := response["data"].(map[string]interface{})
				assert.NotEmpty(t, data["token"])
			}
		})
	}
}

func TestGetProfile(t *testing.T) {
	db := setupAuthTestDB(t)
	config.SetDB(db)
	setTestJWTConfig()

	category := seedCategory(t, db, "Carpenter")

	customer := models.User{Name: "Asha", Email: "asha@example.com", Password: "x", Role: models.RoleUser}
	db.Create(&customer)

	techUser := models.User{Name: "Ravi", Email: "ravi@example.com", Password: "x", Role: models.RoleTechnician}
	db.Create(&techUser)
	technician := models.Technician{
		UserID:     techUser.ID,
		CategoryID: category.ID,
		City:       "Mumbai",
		Phone:      "9876543210",
		Bio:        "Woodwork specialist",
		Skills:     []string{"furniture"},
		Experience: 7,
		HourlyRate: 450,
	}
	db.Create(&technician)

	t.Run("Customer profile has no technician section", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/api/users/profile", mockAuthMiddleware(customer.ID, customer.Role), GetProfile)

		req, _ := http.NewRequest(http.MethodGet, "/api/users/profile", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data := response["data"].(map[string]interface{})
		userData := data["user"].(map[string]interface{})
		assert.Equal(t, "asha@example.com", userData["email"])
		assert.NotContains(t, userData, "password")
		assert.NotContains(t, data, "technician")
	})

	t.Run("Technician profile includes the technician record", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/api/users/profile", mockAuthMiddleware(techUser.ID, techUser.Role), GetProfile)

		req, _ := http.NewRequest(http.MethodGet, "/api/users/profile", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data := response["data"].(map[string]interface{})
		technicianData := data["technician"].(map[string]interface{})
		assert.Equal(t, "Mumbai", technicianData["city"])
		categoryData := technicianData["category"].(map[string]interface{})
		assert.Equal(t, "Carpenter", categoryData["name"])
	})

	t.Run("Unknown user returns 404", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/api/users/profile", mockAuthMiddleware(9999, models.RoleUser), GetProfile)

		req, _ := http.NewRequest(http.MethodGet, "/api/users/profile", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateProfile(t *testing.T) {
	db := setupAuthTestDB(t)
	config.SetDB(db)
	setTestJWTConfig()

	category := seedCategory(t, db, "Painter")

	customer := models.User{Name: "Asha", Email: "asha@example.com", Password: hashPassword(t, "secret123"), Role: models.RoleUser}
	db.Create(&customer)

	techUser := models.User{Name: "Ravi", Email: "ravi@example.com", Password: "x", Role: models.RoleTechnician}
	db.Create(&techUser)
	technician := models.Technician{
		UserID:     techUser.ID,
		CategoryID: category.ID,
		City:       "Delhi",
		Phone:      "9876543210",
		Bio:        "Interior painting",
		Skills:     []string{"walls"},
		Experience: 4,
		HourlyRate: 300,
	}
	db.Create(&technician)

	t.Run("Update name only", func(t *testing.T) {
		router := setupTestRouter()
		router.PUT("/api/users/profile", mockAuthMiddleware(customer.ID, customer.Role), UpdateProfile)

		body, _ := json.Marshal(map[string]interface{}{"name": "Asha V."})
		req, _ := http.NewRequest(http.MethodPut, "/api/users/profile", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var updated models.User
		db.First(&updated, customer.ID)
		assert.Equal(t, "Asha V.", updated.Name)
		assert.Equal(t, "asha@example.com", updated.Email, "email must be untouched")
	})

	t.Run("Update password rehashes", func(t *testing.T) {
		router := setupTestRouter()
		router.PUT("/api/users/profile", mockAuthMiddleware(customer.ID, customer.Role), UpdateProfile)

		body, _ := json.Marshal(map[string]interface{}{"password": "newsecret"})
		req, _ := http.NewRequest(http.MethodPut, "/api/users/profile", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var updated models.User
		db.First(&updated, customer.ID)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("newsecret")))
	})

	t.Run("Update technician rate and skills", func(t *testing.T) {
		router := setupTestRouter()
		router.PUT("/api/users/profile", mockAuthMiddleware(techUser.ID, techUser.Role), UpdateProfile)

		body, _ := json.Marshal(map[string]interface{}{
			"hourlyRate": 350,
			"skills":     "walls, ceilings, exteriors",
		})
		req, _ := http.NewRequest(http.MethodPut, "/api/users/profile", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var updated models.Technician
		db.First(&updated, technician.ID)
		assert.Equal(t, 350.0, updated.HourlyRate)
		assert.Equal(t, []string{"walls", "ceilings", "exteriors"}, updated.Skills)
	})

	t.Run("Update skills only", func(t *testing.T) {
		router := setupTestRouter()
		router.PUT("/api/users/profile", mockAuthMiddleware(techUser.ID, techUser.Role), UpdateProfile)

		body, _ := json.Marshal(map[string]interface{}{"skills": "wallpaper"})
		req, _ := http.NewRequest(http.MethodPut, "/api/users/profile", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var updated models.Technician
		db.First(&updated, technician.ID)
		assert.Equal(t, []string{"wallpaper"}, updated.Skills)
		assert.Equal(t, 350.0, updated.HourlyRate, "rate must be untouched")
		assert.Equal(t, "Delhi", updated.City, "city must be untouched")
	})

	t.Run("Reject invalid email format", func(t *testing.T) {
		router := setupTestRouter()
		router.PUT("/api/users/profile", mockAuthMiddleware(customer.ID, customer.Role), UpdateProfile)

		body, _ := json.Marshal(map[string]interface{}{"email": "not-an-email"})
		req, _ := http.NewRequest(http.MethodPut, "/api/users/profile", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSplitSkills(t *testing.T) {
	assert.Equal(t, []string{"pipes", "fittings"}, splitSkills("pipes, fittings"))
	assert.Equal(t, []string{"wiring"}, splitSkills("wiring"))
	assert.Equal(t, []string{"a", "b"}, splitSkills(" a ,, b ,"))
	assert.Empty(t, splitSkills(""))
}
