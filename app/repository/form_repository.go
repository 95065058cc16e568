package repository

import (
	"github.com/formbridge/formbridge/app/models"
	"gorm.io/gorm"
)

type formRepository struct {
	db *gorm.DB
}

// NewFormRepository creates a form repository backed by GORM.
func NewFormRepository(db *gorm.DB) FormRepository {
	return &formRepository{db: db}
}

func (r *formRepository) Create(form *models.Form) error {
	return r.db.Create(form).Error
}

func (r *formRepository) GetByID(id string) (*models.Form, error) {
	var form models.Form
	if err := r.db.Where("id = ?", id).First(&form).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *formRepository) GetByBaseAndTable(baseID, tableID string) (*models.Form, error) {
	var form models.Form
	if err := r.db.Where("base_id = ? AND table_id = ?", baseID, tableID).First(&form).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

func (r *formRepository) ListByOwner(ownerAirtableUserID string) ([]models.Form, error) {
	var forms []models.Form
	err := r.db.Where("owner_airtable_user_id = ?", ownerAirtableUserID).
		Order("created_at DESC").Find(&forms).Error
	return forms, err
}

func (r *formRepository) List() ([]models.Form, error) {
	var forms []models.Form
	err := r.db.Order("created_at DESC").Find(&forms).Error
	return forms, err
}
