package handlers

import (
	"momo/internal/catalog"
	"momo/internal/session"

	"github.com/gofiber/fiber/v2"
)

// PageHandler serves the catalog pages.
type PageHandler struct {
	catalog *catalog.Catalog
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(menu *catalog.Catalog) *PageHandler {
	return &PageHandler{catalog: menu}
}

// RegisterRoutes registers the catalog pages with the Fiber app.
func (h *PageHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleIndex)
	router.Get("/veg_momo", h.HandleVegMomo)
	router.Get("/menu", h.HandleMenu)
	router.Get("/register_prompt", h.HandleRegisterPrompt)
}

// HandleIndex renders the landing page.
func (h *PageHandler) HandleIndex(c *fiber.Ctx) error {
	return render(c, "index.html", fiber.Map{
		"featured":   h.catalog.Featured(),
		"categories": h.catalog.Categories(),
	})
}

// HandleVegMomo renders the vegetarian menu.
func (h *PageHandler) HandleVegMomo(c *fiber.Ctx) error {
	return render(c, "veg_momo.html", fiber.Map{
		"items": h.catalog.ByCategory("veg"),
	})
}

// HandleMenu renders the full menu.
func (h *PageHandler) HandleMenu(c *fiber.Ctx) error {
	return render(c, "all_momos.html", fiber.Map{
		"categories": h.catalog.Categories(),
		"items":      h.catalog.All(),
	})
}

// HandleRegisterPrompt nudges an anonymous shopper towards registration.
func (h *PageHandler) HandleRegisterPrompt(c *fiber.Ctx) error {
	return flashRedirect(c, session.FlashInfo, "Please register or log in to place an order", "/register")
}
