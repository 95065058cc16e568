package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/formbridge/formbridge/app/controllers"
	"github.com/formbridge/formbridge/internal/pkg/cache"
)

type WebhookRouter struct {
}

// InstallRouter mounts the webhook ingress behind a rate limiter backed by
// the shared Redis instance, so limits hold across replicas.
func (h WebhookRouter) InstallRouter(app *fiber.App) {
	host, port, password := "127.0.0.1", 6379, ""
	if opts := cache.GetClient().Options(); opts != nil && opts.Addr != "" {
		if hostPart, portPart, err := net.SplitHostPort(opts.Addr); err == nil {
			host = hostPart
			if parsed, err := strconv.Atoi(portPart); err == nil {
				port = parsed
			}
		} else {
			host = opts.Addr
		}
		password = opts.Password
	}

	webhookLimiter := limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Storage: redisstorage.New(redisstorage.Config{
			Host:     host,
			Port:     port,
			Password: password,
			Database: 1,
			Reset:    false,
		}),
	})

	app.Post("/webhooks/airtable", webhookLimiter, controllers.HandleWebhookBatch)
}

func NewWebhookRouter() *WebhookRouter {
	return &WebhookRouter{}
}
