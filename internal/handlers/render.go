package handlers

import (
	"fmt"
	"strings"

	"momo/internal/catalog"
	"momo/internal/models"
	"momo/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// currentUser is the identity exposed to every page.
type currentUser struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// render writes the view model for template. Pending flashes are consumed.
func render(c *fiber.Ctx, template string, data fiber.Map) error {
	sess := session.From(c)

	view := fiber.Map{}
	for k, v := range data {
		view[k] = v
	}
	view["template"] = template
	view["flashes"] = sess.PopFlashes()
	if sess.Authenticated() {
		view["current_user"] = currentUser{UserID: sess.UserID, Username: sess.Username}
	} else {
		view["current_user"] = nil
	}

	return c.JSON(view)
}

// flashRedirect queues a flash and redirects to location.
func flashRedirect(c *fiber.Ctx, category, message, location string) error {
	session.From(c).AddFlash(category, message)
	return c.Redirect(location)
}

// jsonError writes the error envelope used by the JSON cart endpoints.
func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

// cartLine is a cart item decorated for display.
type cartLine struct {
	models.CartItem
	ImageURL  string  `json:"image_url"`
	LineTotal float64 `json:"line_total"`
}

// cartView is the page data shared by the cart and checkout pages.
func cartView(cart *models.Cart, images *catalog.ImageResolver) fiber.Map {
	items := cart.Snapshot()
	lines := make([]cartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, cartLine{
			CartItem:  item,
			ImageURL:  images.URL(item.Image),
			LineTotal: item.LineTotal(),
		})
	}
	totals := models.ComputeTotals(items)

	return fiber.Map{
		"cart_items":              lines,
		"subtotal":                totals.Subtotal,
		"delivery_fee":            totals.DeliveryFee,
		"total":                   totals.Total,
		"free_delivery_remaining": totals.FreeDeliveryRemaining,
		"free_delivery_threshold": models.FreeDeliveryThreshold,
	}
}

// validationMessage flattens validator errors into one line.
func validationMessage(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		parts = append(parts, fmt.Sprintf("field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return strings.Join(parts, "; ")
}
