package handlers

import (
	"errors"
	"log"
	"strings"

	"momo/internal/services"
	"momo/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Username string `form:"username" validate:"required,max=100"`
	Password string `form:"password" validate:"required,max=72"`
	Email    string `form:"email" validate:"required,email,max=255"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/register", h.HandleRegisterPage)
	router.Post("/register", h.HandleRegister)
	router.Get("/login", h.HandleLoginPage)
	router.Post("/login", h.HandleLogin)
	router.Get("/logout", h.HandleLogout)
}

// HandleRegisterPage renders the registration form.
func (h *AuthHandler) HandleRegisterPage(c *fiber.Ctx) error {
	if session.From(c).Authenticated() {
		return flashRedirect(c, session.FlashInfo, "You are already registered and logged in", "/profile")
	}
	return render(c, "register.html", nil)
}

// HandleRegister creates an account and sends the user to the login page.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	sess := session.From(c)
	if sess.Authenticated() {
		return flashRedirect(c, session.FlashInfo, "You are already registered and logged in", "/profile")
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register form: %v", err)
		sess.AddFlash(session.FlashDanger, "Invalid registration form")
		return render(c, "register.html", nil)
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validate.Struct(req); err != nil {
		log.Printf("Rejected registration: %s", validationMessage(err))
		message := "Username, password and a valid email are required"
		if req.Password != "" && len(req.Password) > services.MaxPasswordBytes {
			message = "Password must be at most 72 bytes long"
		}
		sess.AddFlash(session.FlashWarning, message)
		return render(c, "register.html", fiber.Map{"username": req.Username, "email": req.Email})
	}

	user, err := h.authService.RegisterUser(c.UserContext(), req.Username, req.Password, req.Email)
	switch {
	case errors.Is(err, services.ErrValidation):
		sess.AddFlash(session.FlashWarning, "Password must be at most 72 bytes long")
		return render(c, "register.html", fiber.Map{"username": req.Username, "email": req.Email})
	case errors.Is(err, services.ErrConflict):
		sess.AddFlash(session.FlashWarning, "Username or email already exists")
		return render(c, "register.html", fiber.Map{"username": req.Username, "email": req.Email})
	case err != nil:
		log.Printf("Error registering user %s: %v", req.Username, err)
		sess.AddFlash(session.FlashDanger, "Database error: unable to process registration. Please try again later.")
		return render(c, "register.html", fiber.Map{"username": req.Username, "email": req.Email})
	}

	log.Printf("Registered user %s (%s)", user.Username, user.ID)
	return flashRedirect(c, session.FlashSuccess, "Registration successful. Please log in.", "/login")
}

// HandleLoginPage renders the login form.
func (h *AuthHandler) HandleLoginPage(c *fiber.Ctx) error {
	if session.From(c).Authenticated() {
		return flashRedirect(c, session.FlashInfo, "You are already logged in", "/profile")
	}
	return render(c, "login.html", nil)
}

// HandleLogin verifies the credentials and binds the identity to the session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	sess := session.From(c)
	if sess.Authenticated() {
		return flashRedirect(c, session.FlashInfo, "You are already logged in", "/profile")
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login form: %v", err)
		sess.AddFlash(session.FlashDanger, "Invalid login form")
		return render(c, "login.html", nil)
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := h.validate.Struct(req); err != nil {
		sess.AddFlash(session.FlashWarning, "Username and password are required")
		return render(c, "login.html", fiber.Map{"username": req.Username})
	}

	result, err := h.authService.LoginUser(c.UserContext(), req.Username, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		sess.AddFlash(session.FlashDanger, "Invalid username or password")
		return render(c, "login.html", fiber.Map{"username": req.Username})
	case err != nil:
		log.Printf("Error logging in user %s: %v", req.Username, err)
		sess.AddFlash(session.FlashDanger, "Database error: unable to process login. Please try again later.")
		return render(c, "login.html", fiber.Map{"username": req.Username})
	}

	sess.SetUser(result.User.ID, result.User.Username)
	if result.Upgraded {
		return flashRedirect(c, session.FlashSuccess, "Logged in and password upgraded to secure storage", "/")
	}
	return flashRedirect(c, session.FlashSuccess, "Logged in successfully", "/")
}

// HandleLogout drops the identity. The cart stays with the browser.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	session.From(c).ClearUser()
	return flashRedirect(c, session.FlashInfo, "You have been logged out", "/")
}
