package repository

import (
	"github.com/rachitpednekar/cloudshare/app/models"
)

// ProfileRepository defines the interface for profile-related database operations
type ProfileRepository interface {
	Create(profile *models.Profile) error
	GetByClerkID(clerkID string) (*models.Profile, error)
	GetByEmail(email string) (*models.Profile, error)
	ExistsByClerkID(clerkID string) (bool, error)
	Update(profile *models.Profile) error
	Delete(clerkID string) error
}

// CreditsRepository defines the interface for credit-ledger operations.
// Balances only ever increase through this interface.
type CreditsRepository interface {
	GetByClerkID(clerkID string) (*models.UserCredits, error)
	InitZeroBalance(clerkID string) (*models.UserCredits, error)
	AddCredits(clerkID string, amount int, plan string) (*models.UserCredits, error)
}

// TransactionRepository defines the interface for payment transaction operations
type TransactionRepository interface {
	Create(tx *models.PaymentTransaction) error
	GetByOrderID(orderID string) (*models.PaymentTransaction, error)
	ListSuccessfulByClerkID(clerkID string) ([]models.PaymentTransaction, error)
	// MarkTerminal atomically transitions a PENDING transaction to the given
	// terminal status. It reports false when the transaction was already
	// terminal, which callers use to suppress duplicate credit side effects.
	MarkTerminal(orderID, status, paymentID string, creditsAdded int) (bool, error)
}

// WebhookEventRepository persists inbound webhook payloads for idempotent processing
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}
