package models

import (
	"time"

	"gorm.io/gorm"
)

// Technician is a service-provider profile linked one-to-one to a User account
type Technician struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"uniqueIndex;not null" json:"user_id"` // one profile per account
	User          User           `gorm:"foreignKey:UserID" json:"user"`
	CategoryID    uint           `gorm:"not null;index" json:"category_id"`
	Category      Category       `gorm:"foreignKey:CategoryID" json:"category"`
	City          string         `gorm:"not null" json:"city"`
	State         string         `json:"state"`
	Phone         string         `gorm:"not null" json:"phone"`
	Bio           string         `gorm:"not null" json:"bio"`
	Skills        []string       `gorm:"serializer:json" json:"skills"`
	Experience    int            `gorm:"not null" json:"experience"` // in years
	HourlyRate    float64        `gorm:"not null" json:"hourly_rate"`
	Availability  string         `gorm:"not null;default:'Mon-Fri, 9am-5pm'" json:"availability"`
	AverageRating float64        `gorm:"not null;default:0" json:"average_rating"` // recomputed cache, written only by the add-review path
	PhotoKey      *string        `json:"photo_key,omitempty"`
	PhotoURL      *string        `gorm:"-" json:"photo_url,omitempty"` // computed, presigned or local URL
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Technician model
func (Technician) TableName() string {
	return "technicians"
}
