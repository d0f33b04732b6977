package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/t-finder/t-finder-api/config"
	"github.com/t-finder/t-finder-api/middleware"
	"github.com/t-finder/t-finder-api/models"
)

// CreateAppointmentRequest represents the request body for creating an appointment
type CreateAppointmentRequest struct {
	TechnicianID uint   `json:"technicianId" binding:"required"`
	Date         string `json:"date" binding:"required"`
	Description  string `json:"description" binding:"required"`
}

// UpdateAppointmentRequest represents the request body for appointment updates
type UpdateAppointmentRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// CreateAppointment handles POST /api/appointments - requests a consultation
// with a technician without reserving a slot
func CreateAppointment(c *gin.Context) {
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

	var req CreateAppointmentRequest
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

	date, err := parseScheduledDate(req.Date)
	if err != nil {
		// Appointments also accept a full timestamp
		if parsed, tErr := time.Parse(time.RFC3339, req.Date); tErr == nil {
			date = parsed
		} else {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid date",
				},
			})
			return
		}
	}

	db := config.GetDB()
	var technician models.Technician
	if err := db.First(&technician, req.TechnicianID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TECHNICIAN_NOT_FOUND",
				"message": "Technician not found",
			},
		})
		return
	}

	appointment := models.Appointment{
		UserID:       userID,
		TechnicianID: technician.ID,
		Date:         date,
		Description:  req.Description,
		Status:       models.AppointmentStatusPending,
	}

	if err := db.Create(&appointment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create appointment",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    appointment,
	})
}

// GetMyAppointments handles GET /api/appointments and
// GET /api/appointments/my-appointments - the caller's appointments,
// by technician profile for technicians and by account otherwise
func GetMyAppointments(c *gin.Context) {
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

	appointments := []models.Appointment{}
	if user.IsTechnician() {
		var technician models.Technician
		if err := db.Where("user_id = ?", userID).First(&technician).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TECHNICIAN_PROFILE_NOT_FOUND",
					"message": "Technician profile not found",
				},
			})
			return
		}
		err = db.Preload("User").
			Where("technician_id = ?", technician.ID).
			Order("date asc").
			Find(&appointments).Error
	} else {
		err = db.Preload("Technician.User").
			Preload("Technician.Category").
			Where("user_id = ?", userID).
			Order("date asc").
			Find(&appointments).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load appointments",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointments,
	})
}

// UpdateAppointment handles PUT /api/appointments/:id - status changes with
// role-dependent rules: technicians confirm/reject pending, complete
// confirmed, cancel anytime; users may cancel unless already terminal
func UpdateAppointment(c *gin.Context) {
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

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "APPOINTMENT_NOT_FOUND",
				"message": "Appointment not found",
			},
		})
		return
	}

	var req UpdateAppointmentRequest
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
	var appointment models.Appointment
	if err := db.First(&appointment, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "APPOINTMENT_NOT_FOUND",
				"message": "Appointment not found",
			},
		})
		return
	}

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

	allowed := false
	if user.IsTechnician() {
		if !isAssignedTechnician(db, userID, appointment.TechnicianID) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_AUTHORIZED",
					"message": "Not authorized to update this appointment",
				},
			})
			return
		}
		switch req.Status {
		case models.AppointmentStatusConfirmed, models.AppointmentStatusRejected:
			allowed = appointment.Status == models.AppointmentStatusPending
		case models.AppointmentStatusCompleted:
			allowed = appointment.Status == models.AppointmentStatusConfirmed
		case models.AppointmentStatusCancelled:
			allowed = true
		}
	} else {
		if appointment.UserID != userID {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_AUTHORIZED",
					"message": "Not authorized to update this appointment",
				},
			})
			return
		}
		if req.Status == models.AppointmentStatusCancelled &&
			appointment.Status != models.AppointmentStatusCompleted &&
			appointment.Status != models.AppointmentStatusCancelled {
			allowed = true
		}
	}

	if !allowed {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS_TRANSITION",
				"message": "Invalid status change or not allowed",
			},
		})
		return
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Reason != "" {
		updates["reason"] = req.Reason
	}
	if err := db.Model(&appointment).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update appointment",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appointment,
	})
}
