package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/t-finder/t-finder-api/config"
	"github.com/t-finder/t-finder-api/models"
)

// GetCategories handles GET /api/categories - lists all service categories
func GetCategories(c *gin.Context) {
	db := config.GetDB()

	categories := []models.Category{}
	if err := db.Order("name asc").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load categories",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    categories,
	})
}

// GetCities handles GET /api/cities - lists the distinct cities technicians
// operate in, sorted alphabetically
func GetCities(c *gin.Context) {
	db := config.GetDB()

	cities := []string{}
	if err := db.Model(&models.Technician{}).
		Distinct().
		Order("city asc").
		Pluck("city", &cities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load cities",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cities,
	})
}
