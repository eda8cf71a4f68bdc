package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile mirrors the identity provider's user record. ClerkID is the
// external subject identifier and the primary key across profile, credits
// and transaction records.
type Profile struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ClerkID   string         `gorm:"type:varchar(191);not null;uniqueIndex" json:"clerk_id"`
	Email     string         `gorm:"type:varchar(255);not null;index" json:"email"`
	FirstName string         `gorm:"type:varchar(100);default:''" json:"first_name"`
	LastName  string         `gorm:"type:varchar(100);default:''" json:"last_name"`
	PhotoURL  string         `gorm:"type:varchar(500);default:''" json:"photo_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
