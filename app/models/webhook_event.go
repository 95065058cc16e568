package models

import "time"

// WebhookEvent records one inbound webhook delivery for idempotency and
// audit. EventID is the upstream delivery id when present, otherwise a hash
// of the payload.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	EventID         string     `gorm:"uniqueIndex;type:varchar(128)" json:"event_id"`
	PayloadJSON     string     `gorm:"type:mediumtext" json:"-"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
