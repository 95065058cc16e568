package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/formbridge/formbridge/internal/pkg/airtable"
	"github.com/formbridge/formbridge/internal/pkg/cache"
	"github.com/formbridge/formbridge/internal/pkg/middleware"
)

// Schema listings barely change within a browsing session; cache them
// briefly per token to spare upstream rate limits.
const metaCacheTTL = 30 * time.Second

// HandleListBases proxies the upstream base listing for the authenticated
// identity.
func HandleListBases(c *fiber.Ctx) error {
	token := middleware.BearerToken(c)
	return proxyMetaRequest(c, "bases:"+tokenFingerprint(token), func(ctx context.Context) ([]byte, error) {
		return airtable.NewClientFromEnv().ListBases(ctx, token)
	}, "Failed to load bases")
}

// HandleListTables proxies the table schema listing of one base.
func HandleListTables(c *fiber.Ctx) error {
	token := middleware.BearerToken(c)
	baseID := c.Query("base")
	if baseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing base id"})
	}
	return proxyMetaRequest(c, "tables:"+baseID+":"+tokenFingerprint(token), func(ctx context.Context) ([]byte, error) {
		return airtable.NewClientFromEnv().ListTables(ctx, token, baseID)
	}, "Failed to load tables")
}

func proxyMetaRequest(c *fiber.Ctx, cacheKey string, fetch func(context.Context) ([]byte, error), failMsg string) error {
	cacheKey = "airtable:meta:" + cacheKey
	if cached, err := cache.Get(cacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	body, err := fetch(ctx)
	if err != nil {
		if errors.Is(err, airtable.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication invalid or expired"})
		}
		log.Printf("meta request failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": failMsg})
	}

	if err := cache.Set(cacheKey, string(body), metaCacheTTL); err != nil {
		log.Printf("meta cache write failed: %v", err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// tokenFingerprint derives a cache key component from a bearer token
// without storing the token itself.
func tokenFingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
