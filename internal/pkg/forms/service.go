package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/formbridge/formbridge/app/models"
	"github.com/formbridge/formbridge/app/repository"
	"github.com/formbridge/formbridge/internal/pkg/airtable"
	"github.com/formbridge/formbridge/internal/pkg/auth"
)

var (
	// ErrFormNotFound means no form exists for the given id.
	ErrFormNotFound = errors.New("form not found")
	// ErrReauthorizationRequired means the form owner's tokens are expired
	// and could not be refreshed; the owner must reconnect Airtable.
	ErrReauthorizationRequired = errors.New("reauthorization required")
	// ErrUpstreamWriteFailed means the record create call failed; no
	// submission record was stored.
	ErrUpstreamWriteFailed = errors.New("upstream write failed")
)

// TokenProvider yields a valid bearer token for an upstream identity.
// Satisfied by *auth.Service.
type TokenProvider interface {
	GetValidAccessToken(ctx context.Context, airtableUserID string) (string, error)
}

// RecordCreator writes one record into an upstream table. Satisfied by
// *airtable.Client.
type RecordCreator interface {
	CreateRecord(ctx context.Context, accessToken, baseID, tableName string, fields map[string]any) (string, error)
}

// SubmissionResult is returned to the submitter on success.
type SubmissionResult struct {
	OK           bool   `json:"ok"`
	RecordID     string `json:"recordId"`
	SubmissionID string `json:"responseId"`
}

// Service owns form creation and the submission pipeline.
type Service struct {
	forms       repository.FormRepository
	submissions repository.SubmissionRepository
	tokens      TokenProvider
	upstream    RecordCreator
}

// NewService creates a form service.
func NewService(forms repository.FormRepository, submissions repository.SubmissionRepository, tokens TokenProvider, upstream RecordCreator) *Service {
	return &Service{forms: forms, submissions: submissions, tokens: tokens, upstream: upstream}
}

// CreateForm projects the given upstream fields into a question set and
// persists the form atomically. Field bindings are fixed from here on.
func (s *Service) CreateForm(ctx context.Context, ownerAirtableUserID, baseID, tableID, tableName string, fields []airtable.Field) (*models.Form, error) {
	_ = ctx
	form := &models.Form{
		ID:                  uuid.NewString(),
		OwnerAirtableUserID: ownerAirtableUserID,
		BaseID:              baseID,
		TableID:             tableID,
		TableName:           tableName,
		Questions:           Project(fields),
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if err := s.forms.Create(form); err != nil {
		return nil, fmt.Errorf("store form: %w", err)
	}
	return form, nil
}

// GetForm loads a form definition by id.
func (s *Service) GetForm(id string) (*models.Form, error) {
	form, err := s.forms.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	return form, nil
}

// SearchForms lists forms, optionally restricted to one owner identity.
func (s *Service) SearchForms(ownerAirtableUserID string) ([]models.Form, error) {
	if ownerAirtableUserID == "" {
		return s.forms.List()
	}
	return s.forms.ListByOwner(ownerAirtableUserID)
}

// ListResponses returns all stored submissions of a form, newest first.
func (s *Service) ListResponses(formID string) ([]models.Submission, error) {
	return s.submissions.ListByFormID(formID)
}

// Submit runs the full submission pipeline: validate the answers, resolve a
// valid owner token, write the record upstream, then persist the submission
// linked to the new upstream record id. There is no partial-success state:
// if the upstream write fails nothing is stored.
//
// idempotencyKey may be empty. When set, a submission already stored under
// the same key is returned as-is and no second upstream record is created.
func (s *Service) Submit(ctx context.Context, formID string, answers models.AnswerMap, idempotencyKey string) (*SubmissionResult, error) {
	form, err := s.GetForm(formID)
	if err != nil {
		return nil, err
	}

	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" {
		if existing, err := s.submissions.GetByIdempotencyKey(idempotencyKey); err == nil {
			return &SubmissionResult{OK: true, RecordID: existing.AirtableRecordID, SubmissionID: existing.ID}, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if verr := Validate(form, answers); verr != nil {
		return nil, verr
	}

	token, err := s.tokens.GetValidAccessToken(ctx, form.OwnerAirtableUserID)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshFailed) || errors.Is(err, auth.ErrIdentityNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrReauthorizationRequired, err)
		}
		return nil, err
	}

	recordID, err := s.upstream.CreateRecord(ctx, token, form.BaseID, form.TableName, projectAnswers(form, answers))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamWriteFailed, err)
	}

	sub := &models.Submission{
		ID:               uuid.NewString(),
		FormID:           form.ID,
		Answers:          answers,
		AirtableRecordID: recordID,
	}
	if idempotencyKey != "" {
		sub.IdempotencyKey = &idempotencyKey
	}
	if err := s.submissions.Create(sub); err != nil {
		return nil, fmt.Errorf("store submission: %w", err)
	}

	return &SubmissionResult{OK: true, RecordID: recordID, SubmissionID: sub.ID}, nil
}

// projectAnswers maps answers from question keys onto upstream field names.
// Attachment values are wrapped into the upstream's attachment reference
// shape ({url: ...} per element).
func projectAnswers(form *models.Form, answers models.AnswerMap) map[string]any {
	fields := make(map[string]any, len(form.Questions))
	for _, q := range form.Questions {
		val, ok := answers[q.Key]
		if !ok || val == nil {
			continue
		}

		if strings.Contains(strings.ToLower(q.Type), "attachment") {
			if seq, isSeq := val.([]any); isSeq {
				wrapped := make([]any, 0, len(seq))
				for _, v := range seq {
					wrapped = append(wrapped, map[string]any{"url": v})
				}
				fields[q.Name] = wrapped
				continue
			}
		}
		fields[q.Name] = val
	}
	return fields
}
