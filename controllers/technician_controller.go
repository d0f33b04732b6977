package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/t-finder/t-finder-api/config"
	"github.com/t-finder/t-finder-api/models"
	"github.com/t-finder/t-finder-api/services"
)

// defaultTechnicianLimit caps unfiltered browse queries
const defaultTechnicianLimit = 50

// GetTechnicians handles GET /api/technicians - filtered, sorted technician search.
// Supported query params: category, location, minRate, maxRate, rating, sortBy, limit.
func GetTechnicians(c *gin.Context) {
	db := config.GetDB()

	query := db.Model(&models.Technician{}).
		Preload("User").
		Preload("Category")

	// Category filter matches by category name
	if category := c.Query("category"); category != "" {
		var cat models.Category
		if err := db.Where("name = ?", category).First(&cat).Error; err == nil {
			query = query.Where("category_id = ?", cat.ID)
		} else {
			// Unknown category matches nothing
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data":    []models.Technician{},
			})
			return
		}
	}

	// Location filter is a case-insensitive exact city match
	if location := c.Query("location"); location != "" {
		query = query.Where("LOWER(city) = LOWER(?)", location)
	}

	// Hourly rate range
	if minRate := c.Query("minRate"); minRate != "" {
		if v, err := strconv.ParseFloat(minRate, 64); err == nil {
			query = query.Where("hourly_rate >= ?", v)
		}
	}
	if maxRate := c.Query("maxRate"); maxRate != "" {
		if v, err := strconv.ParseFloat(maxRate, 64); err == nil {
			query = query.Where("hourly_rate <= ?", v)
		}
	}

	// Minimum average rating
	if rating := c.Query("rating"); rating != "" {
		if v, err := strconv.ParseFloat(rating, 64); err == nil {
			query = query.Where("average_rating >= ?", v)
		}
	}

	switch c.DefaultQuery("sortBy", "rating") {
	case "price-low":
		query = query.Order("hourly_rate asc")
	case "price-high":
		query = query.Order("hourly_rate desc")
	case "experience":
		query = query.Order("experience desc")
	default:
		query = query.Order("average_rating desc")
	}

	limit := defaultTechnicianLimit
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	query = query.Limit(limit)

	technicians := []models.Technician{}
	if err := query.Find(&technicians).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load technicians",
			},
		})
		return
	}

	attachPhotoURLs(technicians)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    technicians,
	})
}

// GetTechnician handles GET /api/technicians/:id - single technician profile
func GetTechnician(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_NOT_FOUND",
				"message": "Technician not found",
			},
		})
		return
	}

	db := config.GetDB()
	var technician models.Technician
	if err := db.Preload("User").Preload("Category").First(&technician, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_NOT_FOUND",
				"message": "Technician not found",
			},
		})
		return
	}

	attachPhotoURL(&technician)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    technician,
	})
}

// attachPhotoURL resolves the stored photo key into a servable URL
func attachPhotoURL(t *models.Technician) {
	if t.PhotoKey == nil || *t.PhotoKey == "" {
		return
	}
	imageService := services.GetImageService()
	if imageService == nil {
		return
	}
	if url, err := imageService.GetImageURL(*t.PhotoKey); err == nil && url != "" {
		t.PhotoURL = &url
	}
}

func attachPhotoURLs(technicians []models.Technician) {
	for i := range technicians {
		attachPhotoURL(&technicians[i])
	}
}
