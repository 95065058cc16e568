package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/formbridge/formbridge/app/models"
	"github.com/formbridge/formbridge/app/repository"
	"github.com/formbridge/formbridge/internal/pkg/airtable"
)

var (
	// ErrInvalidState means the callback state did not match the value
	// issued at the start of the flow.
	ErrInvalidState = errors.New("oauth state mismatch")
	// ErrMissingCode means the provider callback carried no code.
	ErrMissingCode = errors.New("missing authorization code")
	// ErrMissingVerifier means the PKCE verifier cookie was absent.
	ErrMissingVerifier = errors.New("missing pkce verifier")
	// ErrIdentityNotFound means no credential is stored for the identity.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrRefreshFailed means the token is expired and could not be
	// refreshed; the caller must reauthorize.
	ErrRefreshFailed = errors.New("token refresh failed")
)

// OAuthClient is the slice of the upstream client the credential lifecycle
// needs. Satisfied by *airtable.Client.
type OAuthClient interface {
	BuildAuthorizeURL(state, codeChallenge string) (string, error)
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*airtable.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*airtable.TokenResponse, error)
	WhoAmI(ctx context.Context, accessToken string) (*airtable.Identity, error)
}

// AuthorizationStart carries everything the caller must stash client-side
// (cookies) before redirecting the user to the provider.
type AuthorizationStart struct {
	URL      string
	State    string
	Verifier string
}

// Service owns the credential lifecycle: PKCE authorization, token
// exchange, expiry tracking and refresh-on-demand.
type Service struct {
	repo   repository.CredentialRepository
	client OAuthClient

	now func() time.Time
}

// NewService creates a credential lifecycle service.
func NewService(repo repository.CredentialRepository, client OAuthClient) *Service {
	return &Service{repo: repo, client: client, now: time.Now}
}

// BeginAuthorization generates the PKCE verifier/challenge pair plus an
// anti-forgery state token and assembles the provider authorize URL. The
// caller must persist State and Verifier in scoped cookies for the callback.
func (s *Service) BeginAuthorization() (*AuthorizationStart, error) {
	verifier, err := airtable.GenerateVerifier()
	if err != nil {
		return nil, fmt.Errorf("generate pkce verifier: %w", err)
	}
	state, err := airtable.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("generate oauth state: %w", err)
	}

	authURL, err := s.client.BuildAuthorizeURL(state, airtable.ChallengeS256(verifier))
	if err != nil {
		return nil, err
	}

	return &AuthorizationStart{URL: authURL, State: state, Verifier: verifier}, nil
}

// CompleteAuthorization validates the callback, exchanges the code for
// tokens, resolves the upstream identity and upserts the stored credential.
// A second login by the same identity overwrites prior tokens.
func (s *Service) CompleteAuthorization(ctx context.Context, code, state, cookieState, cookieVerifier string) (*models.IdentityCredential, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrMissingCode
	}
	if state == "" || cookieState == "" || state != cookieState {
		return nil, ErrInvalidState
	}
	if cookieVerifier == "" {
		return nil, ErrMissingVerifier
	}

	token, err := s.client.ExchangeCode(ctx, code, cookieVerifier)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	identity, err := s.client.WhoAmI(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(token.ExpiresIn) * time.Second)
	cred := &models.IdentityCredential{
		AirtableUserID: identity.ID,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: &expiresAt,
		LastLoginAt:    &now,
	}
	if err := s.repo.Upsert(cred); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}
	return cred, nil
}

// GetValidAccessToken returns a usable bearer token for the identity,
// refreshing it first if the stored one has expired. Refresh is not
// deduplicated across concurrent callers; the last writer wins on the
// stored credential.
func (s *Service) GetValidAccessToken(ctx context.Context, airtableUserID string) (string, error) {
	cred, err := s.repo.GetByAirtableUserID(airtableUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrIdentityNotFound
		}
		return "", err
	}

	if cred.TokenValid(s.now()) {
		return cred.AccessToken, nil
	}

	if cred.RefreshToken == "" {
		return "", ErrRefreshFailed
	}

	token, err := s.client.RefreshToken(ctx, cred.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	expiresAt := s.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	cred.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		cred.RefreshToken = token.RefreshToken
	}
	cred.TokenExpiresAt = &expiresAt
	if err := s.repo.Save(cred); err != nil {
		return "", fmt.Errorf("store refreshed credential: %w", err)
	}

	return cred.AccessToken, nil
}
