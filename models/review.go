package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is a one-time rating a user leaves for a technician after a
// completed booking. Reviews are immutable once created.
type Review struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;uniqueIndex:idx_reviews_user_technician" json:"user_id"`
	User         User           `gorm:"foreignKey:UserID" json:"user"`
	TechnicianID uint           `gorm:"not null;uniqueIndex:idx_reviews_user_technician" json:"technician_id"`
	Technician   Technician     `gorm:"foreignKey:TechnicianID" json:"-"`
	Rating       int            `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment      string         `gorm:"not null" json:"comment"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}
