package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/formbridge/formbridge/app/models"
	"github.com/formbridge/formbridge/app/repository"
	"github.com/formbridge/formbridge/internal/pkg/airtable"
	"github.com/formbridge/formbridge/internal/pkg/forms"
)

// WebhookController ingests upstream change-event batches against an
// injected set of repositories.
type WebhookController struct {
	events      repository.WebhookEventRepository
	forms       repository.FormRepository
	submissions repository.SubmissionRepository
}

func NewWebhookController(events repository.WebhookEventRepository, formRepo repository.FormRepository, submissions repository.SubmissionRepository) *WebhookController {
	return &WebhookController{events: events, forms: formRepo, submissions: submissions}
}

// HandleWebhookBatch resolves the controller from the global factory; route
// wiring uses this entrypoint.
func HandleWebhookBatch(c *fiber.Ctx) error {
	factory := repository.GetGlobalFactory()
	wc := NewWebhookController(
		factory.GetWebhookEventRepository(),
		factory.GetFormRepository(),
		factory.GetSubmissionRepository(),
	)
	return wc.HandleBatch(c)
}

// HandleBatch ingests one delivery. The handler always reports success to
// the deliverer: delivery is at-least-once, and a non-2xx here would only
// cause redelivery storms. Malformed payloads are logged and dropped.
func (wc *WebhookController) HandleBatch(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	eventID := strings.TrimSpace(c.Get("X-Airtable-Delivery-Id"))
	if eventID == "" {
		sum := sha256.Sum256(rawBody)
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	created, stored, err := wc.events.CreateIfNotExists(&models.WebhookEvent{
		EventID:     eventID,
		PayloadJSON: string(rawBody),
	})
	if err != nil {
		log.Printf("webhook event persist failed: %v", err)
		return c.JSON(fiber.Map{"ok": true})
	}
	if !created && stored.ProcessedAt != nil {
		// Redelivery of an already-processed batch.
		return c.JSON(fiber.Map{"ok": true})
	}

	var payload airtable.WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil || payload.Events == nil {
		if err != nil {
			log.Printf("webhook payload unreadable: %v", err)
			_ = wc.events.MarkProcessed(stored.ID, "unreadable payload: "+err.Error())
		} else {
			_ = wc.events.MarkProcessed(stored.ID, "")
		}
		return c.JSON(fiber.Map{"ok": true})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reconciler := forms.NewReconciler(wc.forms, wc.submissions)
	reconciler.HandleEvents(ctx, payload.Events)

	_ = wc.events.MarkProcessed(stored.ID, "")
	return c.JSON(fiber.Map{"ok": true})
}
