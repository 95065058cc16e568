package repository

import (
	"github.com/formbridge/formbridge/app/models"
	"gorm.io/gorm"
)

// CredentialRepository is the token store: one credential row per upstream
// identity, upserted in place.
type CredentialRepository interface {
	Upsert(cred *models.IdentityCredential) error
	GetByAirtableUserID(airtableUserID string) (*models.IdentityCredential, error)
	Save(cred *models.IdentityCredential) error
}

// FormRepository persists form definitions.
type FormRepository interface {
	Create(form *models.Form) error
	GetByID(id string) (*models.Form, error)
	GetByBaseAndTable(baseID, tableID string) (*models.Form, error)
	ListByOwner(ownerAirtableUserID string) ([]models.Form, error)
	List() ([]models.Form, error)
}

// SubmissionRepository is the response store.
type SubmissionRepository interface {
	Create(sub *models.Submission) error
	GetByID(id string) (*models.Submission, error)
	GetByRecordID(airtableRecordID string) (*models.Submission, error)
	GetByIdempotencyKey(key string) (*models.Submission, error)
	ListByFormID(formID string) ([]models.Submission, error)
	MarkDeletedUpstream(airtableRecordID string) error
	UpdateAnswers(airtableRecordID string, answers models.AnswerMap) error
}

// WebhookEventRepository records inbound deliveries idempotently.
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(id uint, processingError string) error
}

// Repositories holds all repository instances.
type Repositories struct {
	Credential   CredentialRepository
	Form         FormRepository
	Submission   SubmissionRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Credential:   NewCredentialRepository(db),
		Form:         NewFormRepository(db),
		Submission:   NewSubmissionRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
