package models

import "time"

// Plan tiers for the credit ledger. Credits only ever increase through this
// core; downgrades or debits happen elsewhere.
const (
	PlanBasic    = "BASIC"
	PlanPremium  = "PREMIUM"
	PlanUltimate = "ULTIMATE"
)

// InitialCredits is the balance a freshly provisioned user starts with.
const InitialCredits = 0

// UserCredits is the per-user credit ledger entry.
type UserCredits struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClerkID   string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"clerk_id"`
	Credits   int       `gorm:"not null;default:0" json:"credits"`
	Plan      string    `gorm:"type:varchar(20);not null;default:'BASIC'" json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
