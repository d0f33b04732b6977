package controllers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/t-finder/t-finder-api/config"
	"github.com/t-finder/t-finder-api/middleware"
	"github.com/t-finder/t-finder-api/models"
	"gorm.io/gorm"
)

// AddReviewRequest represents the request body for creating a review
type AddReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

// AddReview handles POST /api/technicians/:id/reviews - creates a review
// for a technician the caller has a completed booking with, then recomputes
// the technician's cached average rating
func AddReview(c *gin.Context) {
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

	technicianID, err := strconv.Atoi(c.Param("id"))
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

	var req AddReviewRequest
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
	var technician models.Technician
	if err := db.First(&technician, technicianID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_NOT_FOUND",
				"message": "Technician not found",
			},
		})
		return
	}

	// Reviews are gated on a completed booking between the pair
	var completed int64
	db.Model(&models.Booking{}).
		Where("user_id = ? AND technician_id = ? AND status = ?",
			userID, technician.ID, models.BookingStatusCompleted).
		Count(&completed)
	if completed == 0 {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REVIEW_NOT_ALLOWED",
				"message": "You can only review after completing a booking with this technician",
			},
		})
		return
	}

	// One review per (user, technician) pair
	var existing int64
	db.Model(&models.Review{}).
		Where("user_id = ? AND technician_id = ?", userID, technician.ID).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REVIEW_EXISTS",
				"message": "You have already reviewed this technician",
			},
		})
		return
	}

	review := models.Review{
		UserID:       userID,
		TechnicianID: technician.ID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}

	if err := db.Create(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create review",
			},
		})
		return
	}

	if err := recomputeAverageRating(db, technician.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update technician rating",
			},
		})
		return
	}

	if err := db.Preload("User").First(&review, review.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load review",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    review,
	})
}

// GetReviews handles GET /api/technicians/:id/reviews - lists reviews for a
// technician, newest first, with the reviewer joined
func GetReviews(c *gin.Context) {
	technicianID, err := strconv.Atoi(c.Param("id"))
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
	reviews := []models.Review{}
	if err := db.Preload("User").
		Where("technician_id = ?", technicianID).
		Order("created_at desc").
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load reviews",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reviews,
	})
}

// recomputeAverageRating rewrites the technician's cached average as the
// mean of all current ratings, rounded to one decimal place, 0 when no
// reviews exist. This is the only writer of Technician.AverageRating.
func recomputeAverageRating(db *gorm.DB, technicianID uint) error {
	var avg float64
	if err := db.Model(&models.Review{}).
		Where("technician_id = ?", technicianID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error; err != nil {
		return err
	}

	rounded := math.Round(avg*10) / 10
	return db.Model(&models.Technician{}).
		Where("id = ?", technicianID).
		Update("average_rating", rounded).Error
}
