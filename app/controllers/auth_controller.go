package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/formbridge/formbridge/internal/pkg/airtable"
	"github.com/formbridge/formbridge/internal/pkg/auth"
	"github.com/formbridge/formbridge/internal/pkg/env"
	"github.com/formbridge/formbridge/internal/pkg/middleware"
)

// HandleAuthStart begins the PKCE authorization flow: the verifier and
// anti-forgery state go into scoped cookies and the user is redirected to
// the provider.
func HandleAuthStart(c *fiber.Ctx) error {
	start, err := authService().BeginAuthorization()
	if err != nil {
		log.Printf("auth start failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to start authorization")
	}

	setScopedCookie(c, cookiePKCEVerifier, start.Verifier, oauthCookieTTL)
	setScopedCookie(c, cookieOAuthState, start.State, oauthCookieTTL)

	return c.Redirect(start.URL, fiber.StatusFound)
}

// HandleAuthCallback completes the flow: validates state, exchanges the
// code with the replayed verifier, upserts the credential and issues the
// bearer session cookie.
func HandleAuthCallback(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	cred, err := authService().CompleteAuthorization(
		ctx,
		c.Query("code"),
		c.Query("state"),
		c.Cookies(cookieOAuthState),
		c.Cookies(cookiePKCEVerifier),
	)

	clearCookie(c, cookiePKCEVerifier)
	clearCookie(c, cookieOAuthState)

	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCode):
			return c.Status(fiber.StatusBadRequest).SendString("Missing authorization code")
		case errors.Is(err, auth.ErrInvalidState):
			return c.Status(fiber.StatusBadRequest).SendString("Invalid state")
		case errors.Is(err, auth.ErrMissingVerifier):
			return c.Status(fiber.StatusBadRequest).SendString("Missing PKCE verifier")
		default:
			log.Printf("token exchange failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).SendString("Token exchange failed")
		}
	}

	// The cookie carries the raw access token; the cookie itself is the
	// session.
	var ttl time.Duration = oauthCookieTTL
	if cred.TokenExpiresAt != nil {
		ttl = time.Until(*cred.TokenExpiresAt)
	}
	setScopedCookie(c, cookieBearerToken, cred.AccessToken, ttl)

	frontend := strings.TrimRight(env.GetEnv("FRONTEND_ORIGIN", ""), "/")
	return c.Redirect(frontend+"/dashboard", fiber.StatusFound)
}

// HandleProfile resolves the authenticated upstream identity for the
// current bearer cookie.
func HandleProfile(c *fiber.Ctx) error {
	token := middleware.BearerToken(c)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	identity, err := airtable.NewClientFromEnv().WhoAmI(ctx, token)
	if err != nil {
		if errors.Is(err, airtable.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication invalid or expired"})
		}
		log.Printf("profile lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load profile"})
	}

	return c.JSON(identity)
}
