package forms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formbridge/formbridge/app/models"
	"github.com/formbridge/formbridge/internal/pkg/airtable"
)

func reconcileFixture() (*fakeFormRepo, *fakeSubmissionRepo, *Reconciler) {
	form := testForm(
		models.Question{Key: "q1", Label: "Email", Name: "Email", Type: "email"},
		models.Question{Key: "q2", Label: "Name", Name: "Name", Type: "singleLineText"},
	)
	forms := newFakeFormRepo(form)
	subs := newFakeSubmissionRepo(&models.Submission{
		ID:               "sub-1",
		FormID:           form.ID,
		Answers:          models.AnswerMap{"q1": "a@b.com", "q2": "Ada"},
		AirtableRecordID: "rec1",
	})
	return forms, subs, NewReconciler(forms, subs)
}

func TestHandleEvents_UnknownFormIsSkipped(t *testing.T) {
	_, subs, r := reconcileFixture()

	r.HandleEvents(context.Background(), []airtable.WebhookEvent{{
		BaseID:   "appOther",
		TableID:  "tblOther",
		RecordID: "rec1",
		Op:       airtable.OpUpdate,
		ChangedFields: []airtable.ChangedField{
			{FieldName: "Email", NewValue: "new@b.com"},
		},
	}})

	stored, err := subs.GetByRecordID("rec1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", stored.Answers["q1"])
	assert.False(t, stored.DeletedUpstream)
}

func TestHandleEvents_DeleteMarksSubmission(t *testing.T) {
	_, subs, r := reconcileFixture()

	r.HandleEvents(context.Background(), []airtable.WebhookEvent{{
		BaseID:   "appBase",
		TableID:  "tblTable",
		RecordID: "rec1",
		Op:       airtable.OpDelete,
	}})

	stored, err := subs.GetByRecordID("rec1")
	require.NoError(t, err)
	assert.True(t, stored.DeletedUpstream)
}

func TestHandleEvents_DeleteForUnknownRecordIsNoop(t *testing.T) {
	_, subs, r := reconcileFixture()

	r.HandleEvents(context.Background(), []airtable.WebhookEvent{{
		BaseID:   "appBase",
		TableID:  "tblTable",
		RecordID: "recUnknown",
		Op:       airtable.OpDelete,
	}})

	stored, err := subs.GetByRecordID("rec1")
	require.NoError(t, err)
	assert.False(t, stored.DeletedUpstream)
}

func TestHandleEvents_UpdateRekeysByDisplayName(t *testing.T) {
	_, subs, r := reconcileFixture()

	r.HandleEvents(context.Background(), []airtable.WebhookEvent{{
		BaseID:   "appBase",
		TableID:  "tblTable",
		RecordID: "rec1",
		Op:       airtable.OpUpdate,
		ChangedFields: []airtable.ChangedField{
			{FieldName: "Email", NewValue: "edited@b.com"},
			{FieldName: "Renamed Field", NewValue: "dropped"},
		},
	}})

	stored, err := subs.GetByRecordID("rec1")
	require.NoError(t, err)
	// Changed field re-keyed from display name to the stable question key.
	assert.Equal(t, "edited@b.com", stored.Answers["q1"])
	assert.Equal(t, "Ada", stored.Answers["q2"])
	// A field name matching no question is skipped, not stored.
	assert.NotContains(t, stored.Answers, "Renamed Field")
}

func TestHandleEvents_UnknownOpIgnored(t *testing.T) {
	_, subs, r := reconcileFixture()

	r.HandleEvents(context.Background(), []airtable.WebhookEvent{{
		BaseID:   "appBase",
		TableID:  "tblTable",
		RecordID: "rec1",
		Op:       "create",
	}})

	stored, err := subs.GetByRecordID("rec1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", stored.Answers["q1"])
	assert.False(t, stored.DeletedUpstream)
}

func TestHandleEvents_MixedBatchContinuesAfterUnknownForm(t *testing.T) {
	_, subs, r := reconcileFixture()

	r.HandleEvents(context.Background(), []airtable.WebhookEvent{
		{BaseID: "appOther", TableID: "tblOther", RecordID: "recX", Op: airtable.OpDelete},
		{BaseID: "appBase", TableID: "tblTable", RecordID: "rec1", Op: airtable.OpDelete},
	})

	stored, err := subs.GetByRecordID("rec1")
	require.NoError(t, err)
	assert.True(t, stored.DeletedUpstream)
}
