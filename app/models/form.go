package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Visibility rule combinators and condition operators. Unknown operators
// evaluate to false (fail-closed) rather than erroring.
const (
	LogicAnd = "AND"
	LogicOr  = "OR"

	OperatorEquals    = "equals"
	OperatorNotEquals = "notEquals"
	OperatorContains  = "contains"
	OperatorExists    = "exists"
)

// Condition compares the answer of another question against a value.
type Condition struct {
	QuestionKey string `json:"questionKey"`
	Operator    string `json:"operator"`
	Value       any    `json:"value,omitempty"`
}

// VisibilityRule gates a question on the answers to other questions in the
// same form. A nil rule means always visible.
type VisibilityRule struct {
	Logic      string      `json:"logic"`
	Conditions []Condition `json:"conditions"`
}

// Choice is one selectable option of a select-type field.
type Choice struct {
	Name string `json:"name"`
}

// QuestionOptions carries type-specific metadata copied verbatim from the
// upstream field definition.
type QuestionOptions struct {
	Choices []Choice `json:"choices,omitempty"`
}

// ChoiceNames returns the declared option names, nil-safe.
func (o *QuestionOptions) ChoiceNames() []string {
	if o == nil {
		return nil
	}
	names := make([]string, 0, len(o.Choices))
	for _, c := range o.Choices {
		names = append(names, c.Name)
	}
	return names
}

// Question is one projected upstream field. Key is generator-assigned,
// unique within the form, and stable across edits; it is the join key
// between answers and questions, never the label.
type Question struct {
	Key         string           `json:"questionKey"`
	FieldID     string           `json:"fieldId"`
	Label       string           `json:"label"`
	Type        string           `json:"type"`
	Name        string           `json:"name"`
	Required    bool             `json:"required"`
	Options     *QuestionOptions `json:"options"`
	Conditional *VisibilityRule  `json:"conditional"`
}

// QuestionList is stored as a JSON column.
type QuestionList []Question

func (q QuestionList) Value() (driver.Value, error) {
	return json.Marshal(q)
}

func (q *QuestionList) Scan(value any) error {
	if value == nil {
		*q = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for QuestionList", value)
	}
	return json.Unmarshal(raw, q)
}

// Form is a saved public form derived from one upstream table. The
// BaseID/TableID/FieldID bindings are fixed at save time; editing a form
// never re-binds fields.
type Form struct {
	ID                  string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OwnerAirtableUserID string       `gorm:"index;type:varchar(64)" json:"owner_airtable_user_id" validate:"required"`
	BaseID              string       `gorm:"index:idx_base_table;type:varchar(64)" json:"base_id" validate:"required"`
	TableID             string       `gorm:"index:idx_base_table;type:varchar(64)" json:"table_id" validate:"required"`
	TableName           string       `gorm:"type:varchar(255)" json:"table_name"`
	Questions           QuestionList `gorm:"type:json" json:"questions"`
	CreatedAt           time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (f *Form) Validate() error {
	v := validator.New()
	if err := v.Struct(f); err != nil {
		return err
	}
	return f.validateQuestions()
}

// validateQuestions enforces key uniqueness and conditional-rule referential
// integrity: every condition must reference the key of another question in
// the same form.
func (f *Form) validateQuestions() error {
	keys := make(map[string]struct{}, len(f.Questions))
	for _, q := range f.Questions {
		if q.Key == "" {
			return errors.New("question key must not be empty")
		}
		if _, dup := keys[q.Key]; dup {
			return fmt.Errorf("duplicate question key %q", q.Key)
		}
		keys[q.Key] = struct{}{}
	}
	for _, q := range f.Questions {
		if q.Conditional == nil {
			continue
		}
		for _, cond := range q.Conditional.Conditions {
			if _, ok := keys[cond.QuestionKey]; !ok {
				return fmt.Errorf("question %q: condition references unknown key %q", q.Key, cond.QuestionKey)
			}
		}
	}
	return nil
}

// QuestionByName resolves a question by its upstream display name. Webhook
// change events are keyed by display name, not question key.
func (f *Form) QuestionByName(name string) (*Question, bool) {
	for i := range f.Questions {
		if f.Questions[i].Name == name {
			return &f.Questions[i], true
		}
	}
	return nil, false
}
