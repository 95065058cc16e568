package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formbridge/formbridge/app/models"
)

func TestIsVisible_NilRuleAlwaysVisible(t *testing.T) {
	answerSets := []models.AnswerMap{
		nil,
		{},
		{"q1": "x"},
		{"q1": []any{"a", "b"}},
	}
	for _, answers := range answerSets {
		assert.True(t, IsVisible(nil, answers))
	}
}

func TestIsVisible_AndOrCombination(t *testing.T) {
	rule := &models.VisibilityRule{
		Logic: models.LogicAnd,
		Conditions: []models.Condition{
			{QuestionKey: "q1", Operator: models.OperatorEquals, Value: "x"},
			{QuestionKey: "q2", Operator: models.OperatorExists},
		},
	}

	tests := []struct {
		name    string
		answers models.AnswerMap
		and     bool
		or      bool
	}{
		{name: "both hold", answers: models.AnswerMap{"q1": "x", "q2": "anything"}, and: true, or: true},
		{name: "only equals holds", answers: models.AnswerMap{"q1": "x"}, and: false, or: true},
		{name: "only exists holds", answers: models.AnswerMap{"q1": "y", "q2": "set"}, and: false, or: true},
		{name: "neither holds", answers: models.AnswerMap{"q1": "y", "q2": ""}, and: false, or: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule.Logic = models.LogicAnd
			assert.Equal(t, tt.and, IsVisible(rule, tt.answers))
			rule.Logic = models.LogicOr
			assert.Equal(t, tt.or, IsVisible(rule, tt.answers))
		})
	}
}

func TestIsVisible_Operators(t *testing.T) {
	cond := func(op string, value any) *models.VisibilityRule {
		return &models.VisibilityRule{
			Logic:      models.LogicAnd,
			Conditions: []models.Condition{{QuestionKey: "dep", Operator: op, Value: value}},
		}
	}

	tests := []struct {
		name    string
		rule    *models.VisibilityRule
		answers models.AnswerMap
		want    bool
	}{
		{"equals match", cond(models.OperatorEquals, "x"), models.AnswerMap{"dep": "x"}, true},
		{"equals mismatch", cond(models.OperatorEquals, "x"), models.AnswerMap{"dep": "y"}, false},
		{"equals absent answer", cond(models.OperatorEquals, "x"), models.AnswerMap{}, false},
		{"notEquals mismatch", cond(models.OperatorNotEquals, "x"), models.AnswerMap{"dep": "y"}, true},
		{"notEquals match", cond(models.OperatorNotEquals, "x"), models.AnswerMap{"dep": "x"}, false},
		{"contains present", cond(models.OperatorContains, "b"), models.AnswerMap{"dep": []any{"a", "b"}}, true},
		{"contains absent", cond(models.OperatorContains, "z"), models.AnswerMap{"dep": []any{"a", "b"}}, false},
		{"contains non-sequence", cond(models.OperatorContains, "a"), models.AnswerMap{"dep": "a"}, false},
		{"exists non-empty", cond(models.OperatorExists, nil), models.AnswerMap{"dep": "v"}, true},
		{"exists empty string", cond(models.OperatorExists, nil), models.AnswerMap{"dep": ""}, false},
		{"exists empty sequence", cond(models.OperatorExists, nil), models.AnswerMap{"dep": []any{}}, false},
		{"exists absent", cond(models.OperatorExists, nil), models.AnswerMap{}, false},
		{"unknown operator fails closed", cond("matches", "x"), models.AnswerMap{"dep": "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVisible(tt.rule, tt.answers))
		})
	}
}

func testForm(questions ...models.Question) *models.Form {
	return &models.Form{
		ID:                  "form-1",
		OwnerAirtableUserID: "usrOwner",
		BaseID:              "appBase",
		TableID:             "tblTable",
		TableName:           "Contacts",
		Questions:           questions,
	}
}

func selectQuestion(key, label, fieldType string, choices ...string) models.Question {
	opts := &models.QuestionOptions{}
	for _, name := range choices {
		opts.Choices = append(opts.Choices, models.Choice{Name: name})
	}
	return models.Question{Key: key, Label: label, Name: label, Type: fieldType, Options: opts}
}

func TestValidate_RequiredFirstViolationWins(t *testing.T) {
	form := testForm(
		models.Question{Key: "q1", Label: "Name", Type: "singleLineText", Required: true},
		models.Question{Key: "q2", Label: "Email", Type: "email", Required: true},
		models.Question{Key: "q3", Label: "Phone", Type: "phone", Required: true},
	)

	// All three empty: the first in form order is reported.
	err := Validate(form, models.AnswerMap{})
	require.NotNil(t, err)
	assert.Equal(t, "Name is required", err.Message)

	// First answered: the next empty one is reported.
	err = Validate(form, models.AnswerMap{"q1": "Ada"})
	require.NotNil(t, err)
	assert.Equal(t, "Email is required", err.Message)

	// Empty string and empty sequence both count as missing.
	err = Validate(form, models.AnswerMap{"q1": "", "q2": "a@b.com", "q3": "1"})
	require.NotNil(t, err)
	assert.Equal(t, "Name is required", err.Message)

	err = Validate(form, models.AnswerMap{"q1": []any{}, "q2": "a@b.com", "q3": "1"})
	require.NotNil(t, err)
	assert.Equal(t, "Name is required", err.Message)

	assert.Nil(t, Validate(form, models.AnswerMap{"q1": "Ada", "q2": "a@b.com", "q3": "1"}))
}

func TestValidate_SingleSelectChoices(t *testing.T) {
	form := testForm(selectQuestion("q1", "Color", "singleSelect", "red", "green"))

	assert.Nil(t, Validate(form, models.AnswerMap{"q1": "red"}))
	assert.Nil(t, Validate(form, models.AnswerMap{"q1": ""}))
	assert.Nil(t, Validate(form, models.AnswerMap{}))

	err := Validate(form, models.AnswerMap{"q1": "blue"})
	require.NotNil(t, err)
	assert.Equal(t, "Color: invalid value", err.Message)

	// A non-string scalar is never a declared choice.
	err = Validate(form, models.AnswerMap{"q1": false})
	require.NotNil(t, err)
	assert.Equal(t, "Color: invalid value", err.Message)
}

func TestValidate_MultiSelectChoices(t *testing.T) {
	form := testForm(selectQuestion("q1", "Tags", "multipleSelects", "a", "b"))

	assert.Nil(t, Validate(form, models.AnswerMap{"q1": []any{"a", "b"}}))
	assert.Nil(t, Validate(form, models.AnswerMap{"q1": []any{}}))

	err := Validate(form, models.AnswerMap{"q1": []any{"a", "z"}})
	require.NotNil(t, err)
	assert.Equal(t, "Tags: invalid value in multi-select", err.Message)
}

func TestValidate_HiddenQuestionsAreSkipped(t *testing.T) {
	form := testForm(
		models.Question{Key: "q1", Label: "Subscribe", Type: "checkbox"},
		models.Question{
			Key:      "q2",
			Label:    "Newsletter Email",
			Type:     "email",
			Required: true,
			Conditional: &models.VisibilityRule{
				Logic:      models.LogicAnd,
				Conditions: []models.Condition{{QuestionKey: "q1", Operator: models.OperatorEquals, Value: true}},
			},
		},
	)

	// Hidden required question does not block submission.
	assert.Nil(t, Validate(form, models.AnswerMap{"q1": false}))

	// Visible again: required applies.
	err := Validate(form, models.AnswerMap{"q1": true})
	require.NotNil(t, err)
	assert.Equal(t, "Newsletter Email is required", err.Message)
}
