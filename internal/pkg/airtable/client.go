package airtable

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/formbridge/formbridge/internal/pkg/env"
)

const (
	defaultAuthorizeURL = "https://airtable.com/oauth2/v1/authorize"
	defaultTokenURL     = "https://airtable.com/oauth2/v1/token"
	defaultAPIBaseURL   = "https://api.airtable.com/v0"
)

// DefaultScopes are the upstream scopes this service needs: schema
// discovery, record read/write and webhook management.
var DefaultScopes = []string{
	"schema.bases:read",
	"data.records:read",
	"data.records:write",
	"webhook:manage",
}

// Client talks to the Airtable OAuth and REST endpoints. Endpoint URLs are
// overridable for tests.
type Client struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	AuthorizeURL string
	TokenURL     string
	APIBaseURL   string

	Scopes []string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from AIRTABLE_* environment variables.
func NewClientFromEnv() *Client {
	return &Client{
		ClientID:     strings.TrimSpace(env.GetEnv("AIRTABLE_CLIENT_ID", "")),
		ClientSecret: strings.TrimSpace(env.GetEnv("AIRTABLE_CLIENT_SECRET", "")),
		RedirectURI:  strings.TrimSpace(env.GetEnv("AIRTABLE_REDIRECT_URI", "")),
		AuthorizeURL: strings.TrimSpace(env.GetEnv("AIRTABLE_AUTHORIZE_URL", defaultAuthorizeURL)),
		TokenURL:     strings.TrimSpace(env.GetEnv("AIRTABLE_TOKEN_URL", defaultTokenURL)),
		APIBaseURL:   strings.TrimSpace(env.GetEnv("AIRTABLE_API_BASE_URL", defaultAPIBaseURL)),
		Scopes:       DefaultScopes,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// BuildAuthorizeURL assembles the provider authorize URL for the PKCE flow.
func (c *Client) BuildAuthorizeURL(state, codeChallenge string) (string, error) {
	if strings.TrimSpace(c.ClientID) == "" {
		return "", errors.New("AIRTABLE_CLIENT_ID is not configured")
	}
	if strings.TrimSpace(c.RedirectURI) == "" {
		return "", errors.New("AIRTABLE_REDIRECT_URI is not configured")
	}
	u, err := url.Parse(c.AuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("invalid AIRTABLE_AUTHORIZE_URL: %w", err)
	}
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", c.RedirectURI)
	q.Set("code_challenge", codeChallenge)
	q.Set("code_challenge_method", "S256")
	q.Set("state", state)
	q.Set("scope", strings.Join(c.Scopes, " "))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExchangeCode trades an authorization code plus its PKCE verifier for
// tokens. The token endpoint authenticates the client via HTTP Basic.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenResponse, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("oauth code is required")
	}
	if strings.TrimSpace(codeVerifier) == "" {
		return nil, errors.New("pkce verifier is required")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", strings.TrimSpace(code))
	form.Set("redirect_uri", c.RedirectURI)
	form.Set("code_verifier", codeVerifier)

	return c.postTokenForm(ctx, form)
}

// RefreshToken trades a refresh token for a fresh token pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, errors.New("refresh token is required")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	return c.postTokenForm(ctx, form)
}

func (c *Client) postTokenForm(ctx context.Context, form url.Values) (*TokenResponse, error) {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return nil, errors.New("AIRTABLE_CLIENT_ID/AIRTABLE_CLIENT_SECRET are not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+basicAuth(c.ClientID, c.ClientSecret))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("airtable token request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out TokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return nil, errors.New("airtable token response missing access_token")
	}
	return &out, nil
}

// WhoAmI resolves the authenticated upstream identity.
func (c *Client) WhoAmI(ctx context.Context, accessToken string) (*Identity, error) {
	body, err := c.getJSON(ctx, accessToken, "/meta/whoami")
	if err != nil {
		return nil, err
	}
	var id Identity
	if err := json.Unmarshal(body, &id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id.ID) == "" {
		return nil, errors.New("airtable whoami response missing id")
	}
	return &id, nil
}

// ListBases returns the raw base listing for the authenticated identity.
func (c *Client) ListBases(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return c.getJSON(ctx, accessToken, "/meta/bases")
}

// ListTables returns the raw table schema listing of one base.
func (c *Client) ListTables(ctx context.Context, accessToken, baseID string) (json.RawMessage, error) {
	if strings.TrimSpace(baseID) == "" {
		return nil, errors.New("base id is required")
	}
	return c.getJSON(ctx, accessToken, "/meta/bases/"+url.PathEscape(baseID)+"/tables")
}

// CreateRecord writes one record into the given table and returns the new
// upstream record id.
func (c *Client) CreateRecord(ctx context.Context, accessToken, baseID, tableName string, fields map[string]any) (string, error) {
	if strings.TrimSpace(baseID) == "" || strings.TrimSpace(tableName) == "" {
		return "", errors.New("base id and table name are required")
	}

	payload, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(c.APIBaseURL, "/") + "/" + url.PathEscape(baseID) + "/" + url.PathEscape(tableName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("airtable record create failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.ID) == "" {
		return "", errors.New("airtable record create response missing id")
	}
	return out.ID, nil
}

func (c *Client) getJSON(ctx context.Context, accessToken, path string) (json.RawMessage, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, errors.New("access token is required")
	}

	endpoint := strings.TrimRight(c.APIBaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("airtable request %s failed: status=%d body=%s", path, resp.StatusCode, string(body))
	}
	return json.RawMessage(body), nil
}

// ErrUnauthorized is returned when the upstream rejects the bearer token.
var ErrUnauthorized = errors.New("airtable rejected the access token")

func basicAuth(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}
