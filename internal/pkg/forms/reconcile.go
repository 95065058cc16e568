package forms

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/formbridge/formbridge/app/models"
	"github.com/formbridge/formbridge/app/repository"
	"github.com/formbridge/formbridge/internal/pkg/airtable"
)

// Reconciler applies upstream change events to stored submissions so local
// response records track out-of-band edits and deletes.
type Reconciler struct {
	forms       repository.FormRepository
	submissions repository.SubmissionRepository
}

// NewReconciler creates a reconciliation processor.
func NewReconciler(forms repository.FormRepository, submissions repository.SubmissionRepository) *Reconciler {
	return &Reconciler{forms: forms, submissions: submissions}
}

// HandleEvents processes a webhook batch. It never returns an error:
// webhook delivery is at-least-once and a local failure must not stall the
// upstream queue, so per-event failures are logged and the event dropped.
func (r *Reconciler) HandleEvents(ctx context.Context, events []airtable.WebhookEvent) {
	_ = ctx
	for _, evt := range events {
		if err := r.handleEvent(evt); err != nil {
			log.Printf("webhook event dropped (base=%s table=%s record=%s op=%s): %v",
				evt.BaseID, evt.TableID, evt.RecordID, evt.Op, err)
		}
	}
}

func (r *Reconciler) handleEvent(evt airtable.WebhookEvent) error {
	form, err := r.forms.GetByBaseAndTable(evt.BaseID, evt.TableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No form owns this table; not an error.
			return nil
		}
		return err
	}

	switch evt.Op {
	case airtable.OpDelete:
		return r.submissions.MarkDeletedUpstream(evt.RecordID)
	case airtable.OpUpdate:
		return r.applyUpdate(form, evt)
	default:
		return nil
	}
}

// applyUpdate folds changed fields into the stored answer map. Changed
// fields arrive keyed by the upstream display name; they are re-keyed to the
// stable question key through the owning form. A field name that matches no
// question (renamed upstream after form creation) is skipped.
func (r *Reconciler) applyUpdate(form *models.Form, evt airtable.WebhookEvent) error {
	sub, err := r.submissions.GetByRecordID(evt.RecordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	answers := sub.Answers
	if answers == nil {
		answers = map[string]any{}
	}
	changed := false
	for _, f := range evt.ChangedFields {
		q, ok := form.QuestionByName(f.FieldName)
		if !ok {
			log.Printf("webhook update for record %s: no question named %q, skipping field", evt.RecordID, f.FieldName)
			continue
		}
		answers[q.Key] = f.NewValue
		changed = true
	}
	if !changed {
		return nil
	}
	return r.submissions.UpdateAnswers(evt.RecordID, answers)
}
