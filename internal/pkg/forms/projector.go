package forms

import (
	"strings"

	"github.com/google/uuid"

	"github.com/formbridge/formbridge/app/models"
	"github.com/formbridge/formbridge/internal/pkg/airtable"
)

// supportedFieldTypes is the allow-list of upstream field kinds a form can
// carry. Matching is case-insensitive substring matching against the type
// name, so e.g. "richTextSingleLineText" matches "singleLineText". The
// looseness is intentional.
var supportedFieldTypes = []string{
	"singleLineText",
	"email",
	"phone",
	"number",
	"currency",
	"singleSelect",
	"multipleSelect",
	"multilineText",
	"attachment",
	"checkbox",
}

func fieldTypeSupported(fieldType string) bool {
	t := strings.ToLower(fieldType)
	for _, s := range supportedFieldTypes {
		if strings.Contains(t, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// Project converts upstream field definitions into a question set. Fields
// outside the allow-list are dropped; retained fields get a fresh unique
// key, keep their label/name/options verbatim, and start out optional with
// no conditional rule. Input order is preserved.
func Project(fields []airtable.Field) models.QuestionList {
	questions := make(models.QuestionList, 0, len(fields))
	for _, f := range fields {
		if !fieldTypeSupported(f.Type) {
			continue
		}
		questions = append(questions, models.Question{
			Key:         uuid.NewString(),
			FieldID:     f.ID,
			Label:       f.Name,
			Type:        f.Type,
			Name:        f.Name,
			Required:    false,
			Options:     projectOptions(f.Options),
			Conditional: nil,
		})
	}
	return questions
}

func projectOptions(opts *airtable.FieldOptions) *models.QuestionOptions {
	if opts == nil {
		return nil
	}
	out := &models.QuestionOptions{}
	for _, c := range opts.Choices {
		out.Choices = append(out.Choices, models.Choice{Name: c.Name})
	}
	return out
}
