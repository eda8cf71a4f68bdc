package repository

import (
	"strings"

	"github.com/rachitpednekar/cloudshare/app/models"
	"gorm.io/gorm"
)

// profileRepository implements the ProfileRepository interface
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository instance
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create creates a new profile in the database
func (r *profileRepository) Create(profile *models.Profile) error {
	return r.db.Create(profile).Error
}

// GetByClerkID retrieves a profile by its external subject identifier
func (r *profileRepository) GetByClerkID(clerkID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.Where("clerk_id = ?", clerkID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByEmail retrieves a profile by email address
func (r *profileRepository) GetByEmail(email string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.Where("email = ?", email).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ExistsByClerkID reports whether a profile exists for the given subject
func (r *profileRepository) ExistsByClerkID(clerkID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Profile{}).Where("clerk_id = ?", clerkID).Count(&count).Error
	return count > 0, err
}

// Update persists changes to an existing profile, matched by clerk id.
// Returns gorm.ErrRecordNotFound when no profile exists for the subject.
func (r *profileRepository) Update(profile *models.Profile) error {
	if strings.TrimSpace(profile.ClerkID) == "" {
		return gorm.ErrRecordNotFound
	}
	tx := r.db.Model(&models.Profile{}).
		Where("clerk_id = ?", profile.ClerkID).
		Updates(map[string]interface{}{
			"email":      profile.Email,
			"first_name": profile.FirstName,
			"last_name":  profile.LastName,
			"photo_url":  profile.PhotoURL,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the profile for the given subject identifier
func (r *profileRepository) Delete(clerkID string) error {
	return r.db.Where("clerk_id = ?", clerkID).Delete(&models.Profile{}).Error
}
