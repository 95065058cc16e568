package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/formbridge/formbridge/app/repository"
	"github.com/formbridge/formbridge/internal/pkg/airtable"
	"github.com/formbridge/formbridge/internal/pkg/auth"
	"github.com/formbridge/formbridge/internal/pkg/forms"
)

// Cookie names for the OAuth flow and the bearer session. All three are
// scoped, http-only, secure and cross-site-capable because the form viewer
// and the provider live on other origins.
const (
	cookieBearerToken  = "token"
	cookiePKCEVerifier = "pkce_verifier"
	cookieOAuthState   = "oauth_state"

	oauthCookieTTL = 10 * time.Minute
)

func setScopedCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
		Expires:  time.Now().Add(ttl),
	})
}

func clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
		Expires:  time.Now().Add(-time.Hour),
	})
}

func authService() *auth.Service {
	return auth.NewService(
		repository.GetGlobalFactory().GetCredentialRepository(),
		airtable.NewClientFromEnv(),
	)
}

func formService() *forms.Service {
	factory := repository.GetGlobalFactory()
	client := airtable.NewClientFromEnv()
	return forms.NewService(
		factory.GetFormRepository(),
		factory.GetSubmissionRepository(),
		auth.NewService(factory.GetCredentialRepository(), client),
		client,
	)
}
