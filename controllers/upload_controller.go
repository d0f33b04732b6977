package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/t-finder/t-finder-api/config"
	"github.com/t-finder/t-finder-api/middleware"
	"github.com/t-finder/t-finder-api/models"
	"github.com/t-finder/t-finder-api/services"
	"github.com/t-finder/t-finder-api/utils"
)

// UploadProfilePhoto handles POST /api/technicians/profile/photo - uploads
// the authenticated technician's profile photo
func UploadProfilePhoto(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_AUTHORIZED",
				"message": "Authentication required",
			},
		})
		return
	}

	db := config.GetDB()
	var technician models.Technician
	if err := db.Where("user_id = ?", userID).First(&technician).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_PROFILE_NOT_FOUND",
				"message": "Only technicians can upload a profile photo",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_FILE",
				"message": "Photo file is required (form field 'photo')",
			},
		})
		return
	}

	imageService := services.GetImageService()
	if imageService == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_UNAVAILABLE",
				"message": "Photo storage is not configured",
			},
		})
		return
	}

	photoKey, err := imageService.UploadImage(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to upload photo",
			},
		})
		return
	}

	// Replace any previous photo. Copy the key value first: the Update
	// below writes the new key back through technician.PhotoKey.
	var oldKey string
	if technician.PhotoKey != nil {
		oldKey = *technician.PhotoKey
	}
	if err := db.Model(&technician).Update("photo_key", photoKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save photo reference",
			},
		})
		return
	}
	if oldKey != "" && oldKey != photoKey {
		_ = imageService.DeleteImage(oldKey)
	}

	photoURL, _ := imageService.GetImageURL(photoKey)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"photoKey": photoKey,
			"photoUrl": photoURL,
		},
	})
}

// GetUploadedImage handles GET /api/uploads/:filename - serves locally stored
// profile photos when S3 is not configured
func GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	if filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Filename is required",
			},
		})
		return
	}

	// Security: prevent directory traversal
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILENAME",
				"message": "Invalid filename",
			},
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != utils.AllowedImageFormat {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "Only PNG files are supported",
			},
		})
		return
	}

	filePath := filepath.Join(utils.UploadDir, filename)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_NOT_FOUND",
				"message": "Photo not found",
			},
		})
		return
	}

	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(filePath)
}
