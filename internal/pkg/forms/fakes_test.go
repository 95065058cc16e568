package forms

import (
	"context"

	"gorm.io/gorm"

	"github.com/formbridge/formbridge/app/models"
)

type fakeFormRepo struct {
	forms map[string]*models.Form
}

func newFakeFormRepo(forms ...*models.Form) *fakeFormRepo {
	r := &fakeFormRepo{forms: map[string]*models.Form{}}
	for _, f := range forms {
		r.forms[f.ID] = f
	}
	return r
}

func (r *fakeFormRepo) Create(form *models.Form) error {
	r.forms[form.ID] = form
	return nil
}

func (r *fakeFormRepo) GetByID(id string) (*models.Form, error) {
	if f, ok := r.forms[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFormRepo) GetByBaseAndTable(baseID, tableID string) (*models.Form, error) {
	for _, f := range r.forms {
		if f.BaseID == baseID && f.TableID == tableID {
			return f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFormRepo) ListByOwner(owner string) ([]models.Form, error) {
	var out []models.Form
	for _, f := range r.forms {
		if f.OwnerAirtableUserID == owner {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFormRepo) List() ([]models.Form, error) {
	var out []models.Form
	for _, f := range r.forms {
		out = append(out, *f)
	}
	return out, nil
}

type fakeSubmissionRepo struct {
	subs map[string]*models.Submission // keyed by submission id
}

func newFakeSubmissionRepo(subs ...*models.Submission) *fakeSubmissionRepo {
	r := &fakeSubmissionRepo{subs: map[string]*models.Submission{}}
	for _, s := range subs {
		r.subs[s.ID] = s
	}
	return r
}

func (r *fakeSubmissionRepo) Create(sub *models.Submission) error {
	r.subs[sub.ID] = sub
	return nil
}

func (r *fakeSubmissionRepo) GetByID(id string) (*models.Submission, error) {
	if s, ok := r.subs[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSubmissionRepo) GetByRecordID(recordID string) (*models.Submission, error) {
	for _, s := range r.subs {
		if s.AirtableRecordID == recordID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSubmissionRepo) GetByIdempotencyKey(key string) (*models.Submission, error) {
	for _, s := range r.subs {
		if s.IdempotencyKey != nil && *s.IdempotencyKey == key {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSubmissionRepo) ListByFormID(formID string) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range r.subs {
		if s.FormID == formID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) MarkDeletedUpstream(recordID string) error {
	for _, s := range r.subs {
		if s.AirtableRecordID == recordID {
			s.DeletedUpstream = true
		}
	}
	return nil
}

func (r *fakeSubmissionRepo) UpdateAnswers(recordID string, answers models.AnswerMap) error {
	for _, s := range r.subs {
		if s.AirtableRecordID == recordID {
			s.Answers = answers
		}
	}
	return nil
}

type fakeTokenProvider struct {
	token string
	err   error
	calls int
}

func (p *fakeTokenProvider) GetValidAccessToken(ctx context.Context, airtableUserID string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.token, nil
}

type fakeRecordCreator struct {
	recordID   string
	err        error
	calls      int
	lastFields map[string]any
	lastTable  string
}

func (c *fakeRecordCreator) CreateRecord(ctx context.Context, accessToken, baseID, tableName string, fields map[string]any) (string, error) {
	c.calls++
	c.lastFields = fields
	c.lastTable = tableName
	if c.err != nil {
		return "", c.err
	}
	return c.recordID, nil
}
