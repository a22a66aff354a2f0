package handlers

import (
	"log"
	"strings"

	"momo/internal/services"
	"momo/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ContactHandler accepts contact form messages.
type ContactHandler struct {
	service  *services.ContactService
	validate *validator.Validate
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the contact route with the Fiber app.
func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/contact_submit", h.HandleSubmit)
}

// HandleSubmit records the message and returns to the contact section of the
// landing page.
func (h *ContactHandler) HandleSubmit(c *fiber.Ctx) error {
	var form services.ContactForm
	if err := c.BodyParser(&form); err != nil {
		log.Printf("Error parsing contact form: %v", err)
		return flashRedirect(c, session.FlashDanger, "An error occurred. Please try again.", "/#contact")
	}
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Subject = strings.TrimSpace(form.Subject)
	form.Message = strings.TrimSpace(form.Message)

	if err := h.validate.Struct(form); err != nil {
		return flashRedirect(c, session.FlashWarning, "All fields are required", "/")
	}

	contact, err := h.service.Submit(c.UserContext(), form)
	if err != nil {
		log.Printf("Error saving contact message from %s: %v", form.Email, err)
		return flashRedirect(c, session.FlashDanger, "An error occurred. Please try again.", "/#contact")
	}

	log.Printf("Contact message %d received from %s", contact.ID, contact.Email)
	return flashRedirect(c, session.FlashSuccess, "Thank you for your message! We will get back to you soon.", "/#contact")
}
