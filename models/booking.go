package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking statuses
const (
	BookingStatusPending    = "pending"
	BookingStatusConfirmed  = "confirmed"
	BookingStatusInProgress = "in-progress"
	BookingStatusCompleted  = "completed"
	BookingStatusCancelled  = "cancelled"
	BookingStatusRejected   = "rejected"
)

// Payment statuses (recorded only, no processing)
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// DefaultBookingDuration is the assumed duration in hours when the
// client does not specify one
const DefaultBookingDuration = 2

// ActiveBookingStatuses are the statuses that occupy a time slot
var ActiveBookingStatuses = []string{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
}

// bookingTransitions encodes the allowed status transitions. Terminal
// statuses (completed, cancelled, rejected) have no outgoing edges.
var bookingTransitions = map[string][]string{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCancelled},
}

// Address is the service location for a booking
type Address struct {
	Street  string `gorm:"not null" json:"street"`
	City    string `gorm:"not null" json:"city"`
	State   string `gorm:"not null" json:"state"`
	Pincode string `gorm:"not null" json:"pincode"`
}

// Booking is a scheduled service request between a User and a Technician
type Booking struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index:idx_bookings_user_created" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID" json:"user"`
	TechnicianID  uint           `gorm:"not null;index:idx_bookings_tech_date" json:"technician_id"`
	Technician    Technician     `gorm:"foreignKey:TechnicianID" json:"technician"`
	Service       string         `gorm:"not null" json:"service"`
	Description   string         `gorm:"not null" json:"description"`
	ScheduledDate time.Time      `gorm:"not null;index:idx_bookings_tech_date" json:"scheduled_date"` // midnight UTC
	ScheduledTime string         `gorm:"not null" json:"scheduled_time"`                              // "HH:00" slot label
	Duration      int            `gorm:"not null;default:2" json:"duration"`                          // in hours
	TotalAmount   float64        `gorm:"not null" json:"total_amount"`
	Status        string         `gorm:"not null;default:'pending'" json:"status"`
	Address       Address        `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	ContactPhone  string         `gorm:"not null" json:"contact_phone"`
	Notes         string         `json:"notes"`
	PaymentStatus string         `gorm:"not null;default:'pending'" json:"payment_status"`
	CreatedAt     time.Time      `gorm:"index:idx_bookings_user_created" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// IsActive reports whether the booking occupies its time slot
func (b *Booking) IsActive() bool {
	for _, s := range ActiveBookingStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the booking may move to the target status
func (b *Booking) CanTransitionTo(target string) bool {
	for _, s := range bookingTransitions[b.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// IsValidBookingStatus reports whether s is a known booking status
func IsValidBookingStatus(s string) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled, BookingStatusRejected:
		return true
	}
	return false
}
