package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons.
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory.
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

// GetRepositories returns a singleton instance of all repositories.
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetCredentialRepository returns the credential repository instance.
func (f *Factory) GetCredentialRepository() CredentialRepository {
	return f.GetRepositories().Credential
}

// GetFormRepository returns the form repository instance.
func (f *Factory) GetFormRepository() FormRepository {
	return f.GetRepositories().Form
}

// GetSubmissionRepository returns the submission repository instance.
func (f *Factory) GetSubmissionRepository() SubmissionRepository {
	return f.GetRepositories().Submission
}

// GetWebhookEventRepository returns the webhook event repository instance.
func (f *Factory) GetWebhookEventRepository() WebhookEventRepository {
	return f.GetRepositories().WebhookEvent
}

var (
	globalFactory     *Factory
	globalFactoryOnce sync.Once
)

// InitializeGlobalFactory sets up the package-level factory used by
// controllers and middleware.
func InitializeGlobalFactory(db *gorm.DB) {
	globalFactoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory.
func GetGlobalFactory() *Factory {
	return globalFactory
}
