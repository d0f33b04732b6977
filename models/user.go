package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleUser       = "user"
	RoleTechnician = "technician"
)

// User represents an account in the system (customer or technician)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Role      string         `gorm:"not null;default:'user'" json:"role"` // "user" or "technician"
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsTechnician reports whether the user registered as a technician
func (u *User) IsTechnician() bool {
	return u.Role == RoleTechnician
}
