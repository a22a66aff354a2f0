package handlers

import (
	"errors"
	"log"

	"momo/internal/middleware"
	"momo/internal/repositories"
	"momo/internal/services"
	"momo/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProfileHandler serves the profile page.
type ProfileHandler struct {
	service  *services.ProfileService
	validate *validator.Validate
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the profile routes with the Fiber app.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	profileRoutes := router.Group("/profile", middleware.LoginRequired())
	profileRoutes.Get("/", h.HandleProfile)
	profileRoutes.Post("/address", h.HandleSaveAddress)
}

// HandleProfile renders the user, their past orders and the saved address.
func (h *ProfileHandler) HandleProfile(c *fiber.Ctx) error {
	sess := session.From(c)

	profile, err := h.service.GetProfile(c.UserContext(), sess.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			sess.ClearUser()
			return flashRedirect(c, session.FlashWarning, "Your account could not be found. Please log in again.", "/login")
		}
		log.Printf("Error loading profile for user %s: %v", sess.UserID, err)
		return flashRedirect(c, session.FlashDanger, "Database error: unable to load your profile. Please try again later.", "/")
	}

	var saved interface{}
	switch {
	case profile.SavedAddress != nil && *profile.SavedAddress != "":
		saved = *profile.SavedAddress
	case sess.ProfileAddress != "":
		saved = sess.ProfileAddress
	}

	return render(c, "profile.html", fiber.Map{
		"user":          profile.User,
		"orders":        profile.Orders,
		"saved_address": saved,
	})
}

// HandleSaveAddress stores the address on the user, falling back to the
// session when the store refuses it.
func (h *ProfileHandler) HandleSaveAddress(c *fiber.Ctx) error {
	sess := session.From(c)

	var form services.AddressForm
	if err := c.BodyParser(&form); err != nil {
		log.Printf("Error parsing address form: %v", err)
		return flashRedirect(c, session.FlashDanger, "Invalid address form", "/profile")
	}
	form.Trim()
	if err := h.validate.Struct(form); err != nil {
		return flashRedirect(c, session.FlashWarning, "Please provide at least address line 1, city and phone number", "/profile")
	}

	address, err := h.service.SaveAddress(c.UserContext(), sess.UserID, form)
	if err != nil {
		log.Printf("Keeping address in session for user %s: %v", sess.UserID, err)
		sess.ProfileAddress = address
		return flashRedirect(c, session.FlashWarning, "Address saved locally for this session; it could not be stored in your profile yet.", "/profile")
	}

	sess.ProfileAddress = ""
	return flashRedirect(c, session.FlashSuccess, "Address saved to your profile", "/profile")
}
