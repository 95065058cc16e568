package forms

import (
	"reflect"
	"strings"

	"github.com/formbridge/formbridge/app/models"
)

// ValidationError reports the first invalid answer found. Message matches
// what the form viewer shows to the submitter.
type ValidationError struct {
	Label   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func requiredFieldMissing(label string) *ValidationError {
	return &ValidationError{Label: label, Message: label + " is required"}
}

func invalidChoice(label string) *ValidationError {
	return &ValidationError{Label: label, Message: label + ": invalid value"}
}

func invalidMultiChoice(label string) *ValidationError {
	return &ValidationError{Label: label, Message: label + ": invalid value in multi-select"}
}

// IsVisible evaluates a conditional visibility rule against the submitted
// answers. A nil rule is always visible. Conditions with an unrecognized
// operator evaluate to false (fail-closed).
func IsVisible(rule *models.VisibilityRule, answers models.AnswerMap) bool {
	if rule == nil {
		return true
	}

	logic := rule.Logic
	if logic == "" {
		logic = models.LogicAnd
	}

	results := make([]bool, 0, len(rule.Conditions))
	for _, cond := range rule.Conditions {
		results = append(results, evaluateCondition(cond, answers))
	}

	if logic == models.LogicAnd {
		for _, ok := range results {
			if !ok {
				return false
			}
		}
		return true
	}
	for _, ok := range results {
		if ok {
			return true
		}
	}
	return false
}

func evaluateCondition(cond models.Condition, answers models.AnswerMap) bool {
	val, present := answers[cond.QuestionKey]

	switch cond.Operator {
	case models.OperatorEquals:
		return present && reflect.DeepEqual(val, cond.Value)
	case models.OperatorNotEquals:
		return !present || !reflect.DeepEqual(val, cond.Value)
	case models.OperatorContains:
		seq, ok := val.([]any)
		if !ok {
			return false
		}
		for _, item := range seq {
			if reflect.DeepEqual(item, cond.Value) {
				return true
			}
		}
		return false
	case models.OperatorExists:
		return present && !isEmptyValue(val)
	default:
		return false
	}
}

func isEmptyValue(val any) bool {
	if val == nil {
		return true
	}
	if s, ok := val.(string); ok {
		return s == ""
	}
	if seq, ok := val.([]any); ok {
		return len(seq) == 0
	}
	return false
}

// Validate is the authoritative server-side check run before any upstream
// write, regardless of client-side validation. Questions are checked in
// form order and the first violation wins. Questions hidden by their
// conditional rule are skipped entirely.
func Validate(form *models.Form, answers models.AnswerMap) *ValidationError {
	for i := range form.Questions {
		q := &form.Questions[i]
		if !IsVisible(q.Conditional, answers) {
			continue
		}

		val := answers[q.Key]

		if q.Required && isEmptyValue(val) {
			return requiredFieldMissing(q.Label)
		}

		lowerType := strings.ToLower(q.Type)

		if strings.Contains(lowerType, "singleselect") {
			if err := checkSingleSelect(q, val); err != nil {
				return err
			}
		}

		if strings.Contains(lowerType, "multipleselect") {
			if err := checkMultiSelect(q, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkSingleSelect(q *models.Question, val any) *ValidationError {
	if val == nil {
		return nil
	}
	s, ok := val.(string)
	if !ok {
		return invalidChoice(q.Label)
	}
	if s == "" {
		return nil
	}
	if !containsString(q.Options.ChoiceNames(), s) {
		return invalidChoice(q.Label)
	}
	return nil
}

func checkMultiSelect(q *models.Question, val any) *ValidationError {
	seq, ok := val.([]any)
	if !ok {
		return nil
	}
	choices := q.Options.ChoiceNames()
	for _, item := range seq {
		s, ok := item.(string)
		if !ok || !containsString(choices, s) {
			return invalidMultiChoice(q.Label)
		}
	}
	return nil
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
