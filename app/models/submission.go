package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AnswerMap maps question keys to submitted values, stored as JSON.
type AnswerMap map[string]any

func (a AnswerMap) Value() (driver.Value, error) {
	if a == nil {
		a = AnswerMap{}
	}
	return json.Marshal(a)
}

func (a *AnswerMap) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for AnswerMap", value)
	}
	return json.Unmarshal(raw, a)
}

// Submission is one accepted form submission, cross-referenced to the
// upstream record it created. After creation only the reconciliation
// processor mutates it (DeletedUpstream flag and answer values).
type Submission struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FormID           string    `gorm:"index;type:varchar(36)" json:"form_id"`
	Answers          AnswerMap `gorm:"type:json" json:"answers"`
	AirtableRecordID string    `gorm:"index;type:varchar(64)" json:"airtable_record_id"`
	IdempotencyKey   *string   `gorm:"uniqueIndex;type:varchar(128);default:null" json:"-"`
	DeletedUpstream  bool      `gorm:"default:false" json:"deleted_upstream"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
