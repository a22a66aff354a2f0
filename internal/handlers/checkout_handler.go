package handlers

import (
	"log"
	"strings"

	"momo/internal/catalog"
	"momo/internal/middleware"
	"momo/internal/services"
	"momo/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler serves the checkout page and places orders.
type CheckoutHandler struct {
	service  *services.CheckoutService
	images   *catalog.ImageResolver
	validate *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService, images *catalog.ImageResolver) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		images:   images,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app. Both
// routes require an identity.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkout", middleware.RegistrationRequired())
	checkoutRoutes.Get("/", h.HandleCheckoutPage)
	checkoutRoutes.Post("/", h.HandlePlaceOrder)
}

// HandleCheckoutPage renders the order review.
func (h *CheckoutHandler) HandleCheckoutPage(c *fiber.Ctx) error {
	return h.renderCheckout(c, services.CheckoutForm{})
}

// HandlePlaceOrder stores the order, clears the cart and renders the
// confirmation.
func (h *CheckoutHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	sess := session.From(c)

	var form services.CheckoutForm
	if err := c.BodyParser(&form); err != nil {
		log.Printf("Error parsing checkout form: %v", err)
		sess.AddFlash(session.FlashDanger, "Invalid checkout form")
		return h.renderCheckout(c, form)
	}
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Address = strings.TrimSpace(form.Address)
	form.Payment = strings.TrimSpace(form.Payment)

	if sess.Cart.IsEmpty() {
		return flashRedirect(c, session.FlashWarning, "Your cart is empty", "/cart")
	}
	if err := h.validate.Struct(form); err != nil {
		log.Printf("Rejected checkout: %s", validationMessage(err))
		sess.AddFlash(session.FlashWarning, "Please provide your name, a valid email and a delivery address")
		return h.renderCheckout(c, form)
	}

	confirmation, err := h.service.PlaceOrder(c.UserContext(), sess.UserID, form, &sess.Cart)
	if err != nil {
		log.Printf("Checkout failed for user %s: %v", sess.UserID, err)
		sess.AddFlash(session.FlashDanger, "We could not place your order. Please try again.")
		return h.renderCheckout(c, form)
	}

	sess.Cart.Clear()
	if confirmation.OrderID != nil {
		log.Printf("Order %s placed by user %s", *confirmation.OrderID, sess.UserID)
	}
	return render(c, "order_success.html", fiber.Map{"order": confirmation})
}

func (h *CheckoutHandler) renderCheckout(c *fiber.Ctx, form services.CheckoutForm) error {
	sess := session.From(c)
	data := cartView(&sess.Cart, h.images)
	data["form"] = fiber.Map{
		"name":    form.Name,
		"email":   form.Email,
		"address": form.Address,
		"payment": form.Payment,
	}
	return render(c, "checkout.html", data)
}
