package repository

import (
	"github.com/formbridge/formbridge/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a credential repository backed by GORM.
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

// Upsert creates or replaces the credential row keyed by the upstream
// identity. Last writer wins on concurrent refreshes.
func (r *credentialRepository) Upsert(cred *models.IdentityCredential) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "airtable_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token",
			"refresh_token",
			"token_expires_at",
			"last_login_at",
			"updated_at",
		}),
	}).Create(cred).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("airtable_user_id = ?", cred.AirtableUserID).First(cred).Error
}

func (r *credentialRepository) GetByAirtableUserID(airtableUserID string) (*models.IdentityCredential, error) {
	var cred models.IdentityCredential
	if err := r.db.Where("airtable_user_id = ?", airtableUserID).First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) Save(cred *models.IdentityCredential) error {
	return r.db.Save(cred).Error
}
