package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm(questions ...Question) *Form {
	return &Form{
		ID:                  "form-1",
		OwnerAirtableUserID: "usrOwner",
		BaseID:              "appBase",
		TableID:             "tblTable",
		TableName:           "Contacts",
		Questions:           questions,
	}
}

func TestFormValidate_RequiredFields(t *testing.T) {
	f := validForm(Question{Key: "q1", Name: "Email"})
	require.NoError(t, f.Validate())

	missingOwner := validForm()
	missingOwner.OwnerAirtableUserID = ""
	assert.Error(t, missingOwner.Validate())

	missingBase := validForm()
	missingBase.BaseID = ""
	assert.Error(t, missingBase.Validate())

	missingTable := validForm()
	missingTable.TableID = ""
	assert.Error(t, missingTable.Validate())
}

func TestFormValidate_QuestionKeys(t *testing.T) {
	empty := validForm(Question{Key: "", Name: "Email"})
	require.Error(t, empty.Validate())

	dup := validForm(
		Question{Key: "q1", Name: "Email"},
		Question{Key: "q1", Name: "Name"},
	)
	err := dup.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate question key")
}

func TestFormValidate_ConditionalReferences(t *testing.T) {
	ok := validForm(
		Question{Key: "q1", Name: "Plan"},
		Question{Key: "q2", Name: "Company", Conditional: &VisibilityRule{
			Logic:      LogicAnd,
			Conditions: []Condition{{QuestionKey: "q1", Operator: OperatorEquals, Value: "business"}},
		}},
	)
	require.NoError(t, ok.Validate())

	dangling := validForm(
		Question{Key: "q1", Name: "Plan"},
		Question{Key: "q2", Name: "Company", Conditional: &VisibilityRule{
			Logic:      LogicOr,
			Conditions: []Condition{{QuestionKey: "deleted", Operator: OperatorExists}},
		}},
	)
	err := dangling.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")
}

func TestQuestionByName(t *testing.T) {
	f := validForm(
		Question{Key: "q1", Name: "Email"},
		Question{Key: "q2", Name: "Name"},
	)

	q, ok := f.QuestionByName("Name")
	require.True(t, ok)
	assert.Equal(t, "q2", q.Key)

	_, ok = f.QuestionByName("Renamed")
	assert.False(t, ok)
}

func TestQuestionListScan_RoundTrip(t *testing.T) {
	list := QuestionList{{Key: "q1", Name: "Email", Type: "email"}}
	value, err := list.Value()
	require.NoError(t, err)

	var scanned QuestionList
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, list, scanned)

	var fromNil QuestionList
	require.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)
}

func TestChoiceNames_NilSafe(t *testing.T) {
	var opts *QuestionOptions
	assert.Nil(t, opts.ChoiceNames())

	opts = &QuestionOptions{Choices: []Choice{{Name: "red"}, {Name: "green"}}}
	assert.Equal(t, []string{"red", "green"}, opts.ChoiceNames())
}
