package repository

import (
	"github.com/formbridge/formbridge/app/models"
	"gorm.io/gorm"
)

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a submission repository backed by GORM.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(sub *models.Submission) error {
	return r.db.Create(sub).Error
}

func (r *submissionRepository) GetByID(id string) (*models.Submission, error) {
	var sub models.Submission
	if err := r.db.Where("id = ?", id).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) GetByRecordID(airtableRecordID string) (*models.Submission, error) {
	var sub models.Submission
	if err := r.db.Where("airtable_record_id = ?", airtableRecordID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) GetByIdempotencyKey(key string) (*models.Submission, error) {
	var sub models.Submission
	if err := r.db.Where("idempotency_key = ?", key).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) ListByFormID(formID string) ([]models.Submission, error) {
	var subs []models.Submission
	err := r.db.Where("form_id = ?", formID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

func (r *submissionRepository) MarkDeletedUpstream(airtableRecordID string) error {
	return r.db.Model(&models.Submission{}).
		Where("airtable_record_id = ?", airtableRecordID).
		UpdateColumn("deleted_upstream", true).Error
}

func (r *submissionRepository) UpdateAnswers(airtableRecordID string, answers models.AnswerMap) error {
	return r.db.Model(&models.Submission{}).
		Where("airtable_record_id = ?", airtableRecordID).
		UpdateColumn("answers", answers).Error
}
