package airtable

// TokenResponse is the upstream token endpoint response for both the
// authorization-code exchange and the refresh-token grant.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

// Identity is the upstream whoami response.
type Identity struct {
	ID     string   `json:"id"`
	Scopes []string `json:"scopes"`
}

// FieldOptions carries type-specific field metadata, copied verbatim into
// projected questions.
type FieldOptions struct {
	Choices []FieldChoice `json:"choices,omitempty"`
}

// FieldChoice is one selectable option of a select-type field.
type FieldChoice struct {
	Name string `json:"name"`
}

// Field is one column definition of an upstream table schema.
type Field struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Type    string        `json:"type"`
	Options *FieldOptions `json:"options,omitempty"`
}

// ChangedField is a single field mutation inside a webhook update event,
// keyed by the field's display name.
type ChangedField struct {
	FieldName string `json:"fieldName"`
	NewValue  any    `json:"newValue"`
}

// WebhookEvent is one change notification for an upstream record.
type WebhookEvent struct {
	BaseID        string         `json:"baseId"`
	TableID       string         `json:"tableId"`
	RecordID      string         `json:"recordId"`
	Op            string         `json:"op"`
	ChangedFields []ChangedField `json:"changedFields"`
}

// WebhookPayload is the inbound webhook batch envelope.
type WebhookPayload struct {
	Events []WebhookEvent `json:"events"`
}

// Webhook operations this service reconciles; everything else is ignored.
const (
	OpUpdate = "update"
	OpDelete = "delete"
)
