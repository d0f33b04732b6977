package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/t-finder/t-finder-api/config"
	"github.com/t-finder/t-finder-api/middleware"
	"github.com/t-finder/t-finder-api/models"
	"gorm.io/gorm"
)

// allSlots is the fixed daily booking template (9 AM to 6 PM, hourly)
var allSlots = []string{
	"09:00", "10:00", "11:00", "12:00", "13:00",
	"14:00", "15:00", "16:00", "17:00", "18:00",
}

// timeNow is swapped out by tests that pin the clock
var timeNow = time.Now

// errSlotTaken aborts the create transaction when the re-check finds an
// active booking already holding the slot
var errSlotTaken = errors.New("time slot is not available")

// CreateBookingRequest represents the request body for creating a booking
type CreateBookingRequest struct {
	TechnicianID  uint                 `json:"technicianId" binding:"required"`
	Service       string               `json:"service" binding:"required"`
	Description   string               `json:"description" binding:"required"`
	ScheduledDate string               `json:"scheduledDate" binding:"required"`
	ScheduledTime string               `json:"scheduledTime" binding:"required"`
	Duration      int                  `json:"duration"`
	Address       BookingAddressPayload `json:"address" binding:"required"`
	ContactPhone  string               `json:"contactPhone" binding:"required"`
	Notes         string               `json:"notes"`
}

// BookingAddressPayload is the service address sub-record
type BookingAddressPayload struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required"`
}

// UpdateBookingStatusRequest represents the request body for status transitions
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateBooking handles POST /api/bookings - reserves a slot with a
// technician. The availability re-check and the insert run in a single
// transaction so two concurrent requests cannot share a slot.
func CreateBooking(c *gin.Context) {
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

	var req CreateBookingRequest
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

	scheduledDate, err := parseScheduledDate(req.ScheduledDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid scheduled date",
			},
		})
		return
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

	duration := req.Duration
	if duration <= 0 {
		duration = models.DefaultBookingDuration
	}

	booking := models.Booking{
		UserID:        userID,
		TechnicianID:  technician.ID,
		Service:       req.Service,
		Description:   req.Description,
		ScheduledDate: scheduledDate,
		ScheduledTime: req.ScheduledTime,
		Duration:      duration,
		TotalAmount:   technician.HourlyRate * float64(duration),
		Status:        models.BookingStatusPending,
		Address: models.Address{
			Street:  req.Address.Street,
			City:    req.Address.City,
			State:   req.Address.State,
			Pincode: req.Address.Pincode,
		},
		ContactPhone: req.ContactPhone,
		Notes:        req.Notes,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var occupied int64
		if err := tx.Model(&models.Booking{}).
			Where("technician_id = ? AND scheduled_date = ? AND scheduled_time = ? AND status IN ?",
				technician.ID, scheduledDate, req.ScheduledTime, models.ActiveBookingStatuses).
			Count(&occupied).Error; err != nil {
			return err
		}
		if occupied > 0 {
			return errSlotTaken
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		if errors.Is(err, errSlotTaken) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SLOT_UNAVAILABLE",
					"message": "Time slot is not available",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create booking",
			},
		})
		return
	}

	if err := db.Preload("User").
		Preload("Technician.User").
		Preload("Technician.Category").
		First(&booking, booking.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load booking details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    booking,
	})
}

// GetMyBookings handles GET /api/bookings/my-bookings - the caller's
// bookings, newest created first, with technician display fields joined
func GetMyBookings(c *gin.Context) {
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
	bookings := []models.Booking{}
	if err := db.Preload("Technician.User").
		Preload("Technician.Category").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&bookings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load bookings",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bookings,
	})
}

// GetTechnicianBookings handles GET /api/bookings/technician-bookings -
// bookings assigned to the caller's technician profile, ordered by schedule
func GetTechnicianBookings(c *gin.Context) {
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

	bookings := []models.Booking{}
	if err := db.Preload("User").
		Where("technician_id = ?", technician.ID).
		Order("scheduled_date asc, scheduled_time asc").
		Find(&bookings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load bookings",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bookings,
	})
}

// GetBooking handles GET /api/bookings/:id - single booking, visible only
// to the owning user and the assigned technician
func GetBooking(c *gin.Context) {
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
				"code":    "BOOKING_NOT_FOUND",
				"message": "Booking not found",
			},
		})
		return
	}

	db := config.GetDB()
	var booking models.Booking
	if err := db.Preload("User").
		Preload("Technician.User").
		Preload("Technician.Category").
		First(&booking, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BOOKING_NOT_FOUND",
				"message": "Booking not found",
			},
		})
		return
	}

	if booking.UserID != userID && !isAssignedTechnician(db, userID, booking.TechnicianID) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_AUTHORIZED",
				"message": "Not authorized to view this booking",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    booking,
	})
}

// UpdateBookingStatus handles PUT /api/bookings/:id/status - moves a booking
// through its lifecycle. The owning user may only cancel; the assigned
// technician may perform any legal transition; nobody may leave a terminal
// status.
func UpdateBookingStatus(c *gin.Context) {
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
				"code":    "BOOKING_NOT_FOUND",
				"message": "Booking not found",
			},
		})
		return
	}

	var req UpdateBookingStatusRequest
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

	if !models.IsValidBookingStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown booking status",
			},
		})
		return
	}

	db := config.GetDB()
	var booking models.Booking
	if err := db.First(&booking, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BOOKING_NOT_FOUND",
				"message": "Booking not found",
			},
		})
		return
	}

	isOwner := booking.UserID == userID
	isTechnician := isAssignedTechnician(db, userID, booking.TechnicianID)

	if !isOwner && !isTechnician {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_AUTHORIZED",
				"message": "Not authorized to update this booking",
			},
		})
		return
	}

	// The owning user's only permitted action is cancelling
	if isOwner && !isTechnician && req.Status != models.BookingStatusCancelled {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Customers may only cancel their bookings",
			},
		})
		return
	}

	if !booking.CanTransitionTo(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS_TRANSITION",
				"message": "Cannot change status from " + booking.Status + " to " + req.Status,
			},
		})
		return
	}

	if err := db.Model(&booking).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update booking status",
			},
		})
		return
	}

	if err := db.Preload("User").
		Preload("Technician.User").
		Preload("Technician.Category").
		First(&booking, booking.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load booking details",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    booking,
	})
}

// GetAvailableSlots handles GET /api/bookings/available-slots/:technicianId -
// the hourly slots still free for a technician on a given date
func GetAvailableSlots(c *gin.Context) {
	technicianID, err := strconv.Atoi(c.Param("technicianId"))
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

	dateParam := c.Query("date")
	if dateParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Date is required",
			},
		})
		return
	}

	date, err := parseScheduledDate(dateParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid date",
			},
		})
		return
	}

	slots, err := availableSlots(config.GetDB(), uint(technicianID), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load bookings",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"availableSlots": slots},
	})
}

// availableSlots filters the daily template against the technician's
// active bookings for the date. Past dates yield no slots; on the current
// day only hours strictly after the current hour remain. Matching is by
// exact slot label; a long booking does not block the hours it overlaps.
func availableSlots(db *gorm.DB, technicianID uint, date time.Time) ([]string, error) {
	today := todayUTC()
	if date.Before(today) {
		return []string{}, nil
	}

	var bookedTimes []string
	if err := db.Model(&models.Booking{}).
		Where("technician_id = ? AND scheduled_date = ? AND status IN ?",
			technicianID, date, models.ActiveBookingStatuses).
		Pluck("scheduled_time", &bookedTimes).Error; err != nil {
		return nil, err
	}

	booked := make(map[string]bool, len(bookedTimes))
	for _, t := range bookedTimes {
		booked[t] = true
	}

	slots := make([]string, 0, len(allSlots))
	currentHour := -1
	if date.Equal(today) {
		currentHour = timeNow().Hour()
	}
	for _, slot := range allSlots {
		if booked[slot] {
			continue
		}
		if hour, err := strconv.Atoi(slot[:2]); err == nil && hour <= currentHour {
			continue
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

// isAssignedTechnician reports whether the user owns the technician profile
// a booking is assigned to
func isAssignedTechnician(db *gorm.DB, userID, technicianID uint) bool {
	var technician models.Technician
	if err := db.Where("user_id = ?", userID).First(&technician).Error; err != nil {
		return false
	}
	return technician.ID == technicianID
}

// parseScheduledDate accepts "2006-01-02" or RFC3339 input and normalizes
// to midnight UTC so stored dates compare by equality
func parseScheduledDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// todayUTC is the current calendar day normalized the same way stored
// scheduled dates are
func todayUTC() time.Time {
	now := timeNow()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
