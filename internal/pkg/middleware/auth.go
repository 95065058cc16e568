package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// TokenLocalKey is where the bearer token from the session cookie is placed
// for downstream handlers.
const TokenLocalKey = "AIRTABLE_TOKEN"

// BearerCookieName is the session cookie carrying the raw upstream access
// token. The cookie itself is the session; there is no separate session
// token format.
const BearerCookieName = "token"

// RequireBearerCookie ensures the request carries the bearer session cookie
// and exposes its value via locals. Returns JSON 401 otherwise.
func RequireBearerCookie(c *fiber.Ctx) error {
	token := c.Cookies(BearerCookieName)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not logged in"})
	}
	c.Locals(TokenLocalKey, token)
	return c.Next()
}

// BearerToken returns the token stashed by RequireBearerCookie, falling
// back to the cookie for handlers used without the middleware.
func BearerToken(c *fiber.Ctx) string {
	if v, ok := c.Locals(TokenLocalKey).(string); ok && v != "" {
		return v
	}
	return c.Cookies(BearerCookieName)
}
