package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports the state of the storefront and its store.
type HealthHandler struct {
	store  Pinger
	events bool
}

// NewHealthHandler creates a new HealthHandler. store may be nil when the
// storefront runs on in-memory repositories.
func NewHealthHandler(store Pinger, events bool) *HealthHandler {
	return &HealthHandler{store: store, events: events}
}

// RegisterRoutes registers the health route with the Fiber app.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers 200 while the store is reachable and 503 otherwise.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	body := fiber.Map{
		"status":   "healthy",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"database": "memory",
		"events":   "disabled",
	}
	if h.events {
		body["events"] = "enabled"
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			status = fiber.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unavailable"
			body["error"] = err.Error()
		} else {
			body["database"] = "connected"
		}
	}

	return c.Status(status).JSON(body)
}
