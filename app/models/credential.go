package models

import "time"

// IdentityCredential stores the Airtable OAuth tokens for one upstream
// identity. Exactly one row exists per AirtableUserID; a second login by the
// same identity replaces the stored tokens.
type IdentityCredential struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AirtableUserID string     `gorm:"uniqueIndex;type:varchar(64)" json:"airtable_user_id" validate:"required"`
	AccessToken    string     `gorm:"type:text" json:"-"`
	RefreshToken   string     `gorm:"type:text" json:"-"`
	TokenExpiresAt *time.Time `gorm:"type:timestamp;default:null" json:"token_expires_at,omitempty"`
	LastLoginAt    *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TokenValid reports whether the stored access token is still usable without
// a refresh round-trip.
func (c *IdentityCredential) TokenValid(now time.Time) bool {
	return c.TokenExpiresAt != nil && c.TokenExpiresAt.After(now)
}
