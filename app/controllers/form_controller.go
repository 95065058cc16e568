package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/formbridge/formbridge/app/models"
	"github.com/formbridge/formbridge/internal/pkg/airtable"
	"github.com/formbridge/formbridge/internal/pkg/forms"
	"github.com/formbridge/formbridge/internal/pkg/middleware"
)

type createFormRequest struct {
	BaseID    string           `json:"baseId"`
	TableID   string           `json:"tableId"`
	TableName string           `json:"tableName"`
	Fields    []airtable.Field `json:"fields"`
}

// HandleCreateForm saves a new form projected from the posted table schema.
// The owner is whoever the bearer cookie resolves to upstream.
func HandleCreateForm(c *fiber.Ctx) error {
	var req createFormRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}
	if req.BaseID == "" || req.TableID == "" || req.Fields == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	identity, err := airtable.NewClientFromEnv().WhoAmI(ctx, middleware.BearerToken(c))
	if err != nil {
		if errors.Is(err, airtable.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication invalid or expired"})
		}
		log.Printf("form owner lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save form"})
	}

	form, err := formService().CreateForm(ctx, identity.ID, req.BaseID, req.TableID, req.TableName, req.Fields)
	if err != nil {
		log.Printf("save form failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save form"})
	}

	return c.JSON(fiber.Map{"formId": form.ID})
}

// HandleGetForm returns a form definition by id. Public: the form viewer is
// unauthenticated.
func HandleGetForm(c *fiber.Ctx) error {
	form, err := formService().GetForm(c.Params("id"))
	if err != nil {
		if errors.Is(err, forms.ErrFormNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Form not found"})
		}
		log.Printf("load form failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load form"})
	}
	return c.JSON(form)
}

type submitFormRequest struct {
	Answers models.AnswerMap `json:"answers"`
}

// HandleSubmitForm runs the submission pipeline for a public form. An
// optional Idempotency-Key header makes client retries safe.
func HandleSubmitForm(c *fiber.Ctx) error {
	var req submitFormRequest
	if err := c.BodyParser(&req); err != nil || req.Answers == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing answers"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := formService().Submit(ctx, c.Params("id"), req.Answers, c.Get("Idempotency-Key"))
	if err != nil {
		var verr *forms.ValidationError
		switch {
		case errors.Is(err, forms.ErrFormNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Form not found"})
		case errors.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Message})
		case errors.Is(err, forms.ErrReauthorizationRequired):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication expired, reconnect Airtable"})
		default:
			log.Printf("submit failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit form"})
		}
	}

	return c.JSON(result)
}

// HandleListResponses returns all stored submissions of a form, newest
// first, including upstream-deleted markers.
func HandleListResponses(c *fiber.Ctx) error {
	rows, err := formService().ListResponses(c.Params("id"))
	if err != nil {
		log.Printf("load responses failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load responses"})
	}
	return c.JSON(rows)
}

// HandleSearchForms lists saved forms, optionally filtered by owner
// identity.
func HandleSearchForms(c *fiber.Ctx) error {
	found, err := formService().SearchForms(c.Query("owner"))
	if err != nil {
		log.Printf("search forms failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to search forms"})
	}
	return c.JSON(fiber.Map{"forms": found})
}
