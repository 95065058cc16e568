package router

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/formbridge/formbridge/app/controllers"
	"github.com/formbridge/formbridge/internal/pkg/env"
	"github.com/formbridge/formbridge/internal/pkg/middleware"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	frontend := strings.TrimRight(env.GetEnv("FRONTEND_ORIGIN", ""), "/")

	// Credentialed CORS: only the form frontend and the provider itself
	// may call with cookies.
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return origin == frontend || origin == "https://airtable.com"
		},
		AllowCredentials: true,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type, Authorization, Accept, X-Requested-With, Idempotency-Key",
	}))

	// OAuth flow + profile
	authGroup := app.Group("/auth/airtable")
	authGroup.Get("/start", controllers.HandleAuthStart)
	authGroup.Get("/callback", controllers.HandleAuthCallback)
	authGroup.Get("/profile", middleware.RequireBearerCookie, controllers.HandleProfile)
	authGroup.Get("/bases", middleware.RequireBearerCookie, controllers.HandleListBases)
	authGroup.Get("/tables", middleware.RequireBearerCookie, controllers.HandleListTables)

	// Form management and the public form surface
	app.Post("/forms", middleware.RequireBearerCookie, controllers.HandleCreateForm)
	app.Get("/forms/:id", controllers.HandleGetForm)
	app.Post("/forms/:id/submit", controllers.HandleSubmitForm)
	app.Get("/forms/:id/responses", controllers.HandleListResponses)
	app.Get("/search/forms", controllers.HandleSearchForms)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
