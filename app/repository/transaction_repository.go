package repository

import (
	"github.com/rachitpednekar/cloudshare/app/models"
	"gorm.io/gorm"
)

// transactionRepository implements the TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create persists a new transaction record
func (r *transactionRepository) Create(tx *models.PaymentTransaction) error {
	return r.db.Create(tx).Error
}

// GetByOrderID retrieves a transaction by its checkout session reference
func (r *transactionRepository) GetByOrderID(orderID string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	err := r.db.Where("order_id = ?", orderID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListSuccessfulByClerkID returns a subject's settled transactions, newest first
func (r *transactionRepository) ListSuccessfulByClerkID(clerkID string) ([]models.PaymentTransaction, error) {
	var txs []models.PaymentTransaction
	err := r.db.
		Where("clerk_id = ? AND status = ?", clerkID, models.TransactionStatusSuccess).
		Order("transaction_date DESC").
		Find(&txs).Error
	return txs, err
}

// MarkTerminal transitions a transaction from PENDING to the given terminal
// status. The status guard lives in the WHERE clause so the transition is a
// single atomic compare-and-set in the store; a transaction that already
// reached a terminal state is never overwritten. Returns false when the
// transition did not happen (already terminal or unknown order id).
func (r *transactionRepository) MarkTerminal(orderID, status, paymentID string, creditsAdded int) (bool, error) {
	tx := r.db.Model(&models.PaymentTransaction{}).
		Where("order_id = ? AND status = ?", orderID, models.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":        status,
			"payment_id":    paymentID,
			"credits_added": creditsAdded,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
