package models

import "time"

// Transaction lifecycle. A transaction is created PENDING when a checkout
// session is opened and moves to exactly one terminal state during
// reconciliation. Terminal states never transition again.
const (
	TransactionStatusPending = "PENDING"
	TransactionStatusSuccess = "SUCCESS"
	TransactionStatusFailed  = "FAILED"
)

// PaymentTransaction records one checkout attempt. OrderID is the Stripe
// checkout session id and uniquely identifies the transaction.
type PaymentTransaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ClerkID         string    `gorm:"type:varchar(191);not null;index" json:"clerk_id"`
	OrderID         string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"order_id"`
	PlanID          string    `gorm:"type:varchar(50);not null" json:"plan_id"`
	Amount          int64     `gorm:"not null" json:"amount"`
	Currency        string    `gorm:"type:varchar(10);not null" json:"currency"`
	Status          string    `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PaymentID       string    `gorm:"type:varchar(191);default:''" json:"payment_id"`
	CreditsAdded    int       `gorm:"default:0" json:"credits_added"`
	UserEmail       string    `gorm:"type:varchar(255);default:''" json:"user_email"`
	UserName        string    `gorm:"type:varchar(200);default:''" json:"user_name"`
	TransactionDate time.Time `gorm:"autoCreateTime;index" json:"transaction_date"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsTerminal reports whether the transaction already reached a final state.
func (t *PaymentTransaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess || t.Status == TransactionStatusFailed
}
