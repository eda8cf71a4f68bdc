package repository

import (
	"github.com/rachitpednekar/cloudshare/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// creditsRepository implements the CreditsRepository interface
type creditsRepository struct {
	db *gorm.DB
}

// NewCreditsRepository creates a new credits repository instance
func NewCreditsRepository(db *gorm.DB) CreditsRepository {
	return &creditsRepository{db: db}
}

// GetByClerkID retrieves the credit ledger entry for a subject
func (r *creditsRepository) GetByClerkID(clerkID string) (*models.UserCredits, error) {
	var credits models.UserCredits
	err := r.db.Where("clerk_id = ?", clerkID).First(&credits).Error
	if err != nil {
		return nil, err
	}
	return &credits, nil
}

// InitZeroBalance creates a zero-balance BASIC ledger entry for a subject.
// Safe under webhook redelivery: an existing entry is left untouched.
func (r *creditsRepository) InitZeroBalance(clerkID string) (*models.UserCredits, error) {
	entry := &models.UserCredits{
		ClerkID: clerkID,
		Credits: models.InitialCredits,
		Plan:    models.PlanBasic,
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "clerk_id"}},
		DoNothing: true,
	}).Create(entry).Error; err != nil {
		return nil, err
	}
	return r.GetByClerkID(clerkID)
}

// AddCredits atomically increments a subject's balance and records the plan
// tier. The increment happens in SQL so concurrent top-ups never lose writes.
func (r *creditsRepository) AddCredits(clerkID string, amount int, plan string) (*models.UserCredits, error) {
	if _, err := r.InitZeroBalance(clerkID); err != nil {
		return nil, err
	}
	err := r.db.Model(&models.UserCredits{}).
		Where("clerk_id = ?", clerkID).
		Updates(map[string]interface{}{
			"credits": gorm.Expr("credits + ?", amount),
			"plan":    plan,
		}).Error
	if err != nil {
		return nil, err
	}
	return r.GetByClerkID(clerkID)
}
