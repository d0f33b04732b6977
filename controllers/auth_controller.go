package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/t-finder/t-finder-api/config"
	"github.com/t-finder/t-finder-api/middleware"
	"github.com/t-finder/t-finder-api/models"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest represents the request body for registration.
// Technician fields are required only when role is "technician".
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=user technician"`

	// Technician profile fields
	CategoryID uint    `json:"categoryId"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	Phone      string  `json:"phone"`
	Bio        string  `json:"bio"`
	Skills     string  `json:"skills"` // comma-separated
	Experience int     `json:"experience"`
	HourlyRate float64 `json:"hourlyRate"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the request body for profile updates.
// All fields are optional; technician fields apply to technician accounts only.
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=6"`

	CategoryID   uint    `json:"categoryId"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Phone        string  `json:"phone"`
	Bio          string  `json:"bio"`
	Skills       string  `json:"skills"`
	Experience   int     `json:"experience"`
	HourlyRate   float64 `json:"hourlyRate"`
	Availability string  `json:"availability"`
}

// Register handles POST /api/users/register - registers a user or technician
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	registerAccount(c, req)
}

// RegisterTechnician handles POST /api/technicians/register - technician
// registration shorthand; the role is forced regardless of the body
func RegisterTechnician(c *gin.Context) {
	var req RegisterRequest
	req.Role = models.RoleTechnician
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}
	req.Role = models.RoleTechnician

	registerAccount(c, req)
}

// registerAccount creates the user row, the technician profile when the
// role requires one, and responds with a signed token
func registerAccount(c *gin.Context, req RegisterRequest) {
	db := config.GetDB()

	// Duplicate email check up front for a friendly Conflict response
	var existing models.User
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMAIL_EXISTS",
				"message": "A user with this email already exists",
			},
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SERVER_ERROR",
				"message": "Failed to secure password",
			},
		})
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Role:     req.Role,
	}

	if err := db.Create(&user).Error; err != nil {
		// Covers the race where two registrations hit the unique index
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMAIL_EXISTS",
					"message": "A user with this email already exists",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create user",
			},
		})
		return
	}

	if user.Role == models.RoleTechnician {
		if req.CategoryID == 0 || req.City == "" || req.Phone == "" || req.Bio == "" ||
			req.Skills == "" || req.Experience == 0 || req.HourlyRate == 0 {
			// Remove the just-created user to avoid an orphaned account
			db.Unscoped().Delete(&user)
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Please fill all technician fields",
				},
			})
			return
		}

		technician := models.Technician{
			UserID:     user.ID,
			CategoryID: req.CategoryID,
			City:       req.City,
			State:      req.State,
			Phone:      req.Phone,
			Bio:        req.Bio,
			Skills:     splitSkills(req.Skills),
			Experience: req.Experience,
			HourlyRate: req.HourlyRate,
		}

		if err := db.Create(&technician).Error; err != nil {
			db.Unscoped().Delete(&user)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to create technician profile",
				},
			})
			return
		}
	}

	token, err := middleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SERVER_ERROR",
				"message": "Failed to generate token",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    gin.H{"token": token},
	})
}

// Login handles POST /api/users/login - authenticates and returns a token
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CREDENTIALS",
				"message": "Invalid email or password",
			},
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CREDENTIALS",
				"message": "Invalid email or password",
			},
		})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SERVER_ERROR",
				"message": "Failed to generate token",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"token": token},
	})
}

// GetProfile handles GET /api/users/profile - returns the caller's account,
// joined with the technician profile for technician accounts
func GetProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	if user.IsTechnician() {
		var technician models.Technician
		if err := db.Preload("Category").Where("user_id = ?", user.ID).First(&technician).Error; err == nil {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data": gin.H{
					"user":       user,
					"technician": technician,
				},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"user": user},
	})
}

// UpdateProfile handles PUT /api/users/profile - partial update of the
// caller's account and, for technicians, their profile
func UpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SERVER_ERROR",
					"message": "Failed to secure password",
				},
			})
			return
		}
		updates["password"] = string(hash)
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			errMsg := strings.ToLower(err.Error())
			if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
				c.JSON(http.StatusConflict, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "EMAIL_EXISTS",
						"message": "A user with this email already exists",
					},
				})
				return
			}

			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update profile",
				},
			})
			return
		}
	}

	if !user.IsTechnician() {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"user": user},
		})
		return
	}

	var technician models.Technician
	if err := db.Where("user_id = ?", user.ID).First(&technician).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"user": user},
		})
		return
	}

	// Updates go through the struct so the skills json serializer runs
	techUpdates := technician
	var techColumns []string
	if req.CategoryID != 0 {
		techUpdates.CategoryID = req.CategoryID
		techColumns = append(techColumns, "category_id")
	}
	if req.City != "" {
		techUpdates.City = req.City
		techColumns = append(techColumns, "city")
	}
	if req.State != "" {
		techUpdates.State = req.State
		techColumns = append(techColumns, "state")
	}
	if req.Phone != "" {
		techUpdates.Phone = req.Phone
		techColumns = append(techColumns, "phone")
	}
	if req.Bio != "" {
		techUpdates.Bio = req.Bio
		techColumns = append(techColumns, "bio")
	}
	if req.Skills != "" {
		techUpdates.Skills = splitSkills(req.Skills)
		techColumns = append(techColumns, "skills")
	}
	if req.Experience != 0 {
		techUpdates.Experience = req.Experience
		techColumns = append(techColumns, "experience")
	}
	if req.HourlyRate != 0 {
		techUpdates.HourlyRate = req.HourlyRate
		techColumns = append(techColumns, "hourly_rate")
	}
	if req.Availability != "" {
		techUpdates.Availability = req.Availability
		techColumns = append(techColumns, "availability")
	}

	if len(techColumns) > 0 {
		if err := db.Model(&technician).Select(techColumns).Updates(&techUpdates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update technician profile",
				},
			})
			return
		}
	}

	if err := db.Preload("Category").Where("user_id = ?", user.ID).First(&technician).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"user":       user,
				"technician": technician,
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"user": user},
	})
}

// splitSkills converts the comma-separated skills string into a trimmed list
func splitSkills(s string) []string {
	parts := strings.Split(s, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}
