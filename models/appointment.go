package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment statuses. The appointment flow predates bookings and uses
// capitalised labels; the two modules are kept separate on purpose.
const (
	AppointmentStatusPending   = "Pending"
	AppointmentStatusConfirmed = "Confirmed"
	AppointmentStatusCompleted = "Completed"
	AppointmentStatusCancelled = "Cancelled"
	AppointmentStatusRejected  = "Rejected"
)

// Appointment is a lightweight consultation request without a time slot
type Appointment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	User         User           `gorm:"foreignKey:UserID" json:"user"`
	TechnicianID uint           `gorm:"not null;index" json:"technician_id"`
	Technician   Technician     `gorm:"foreignKey:TechnicianID" json:"technician"`
	Date         time.Time      `gorm:"not null" json:"date"`
	Description  string         `gorm:"not null" json:"description"`
	Status       string         `gorm:"not null;default:'Pending'" json:"status"`
	Reason       string         `gorm:"default:''" json:"reason"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Appointment model
func (Appointment) TableName() string {
	return "appointments"
}
