package middleware

import (
	"momo/internal/session"

	"github.com/gofiber/fiber/v2"
)

// RequireIdentity lets the request through only when the session carries a
// logged-in user; otherwise it flashes message and redirects to redirectTo.
// The rest of the session, including the cart, is left untouched.
func RequireIdentity(redirectTo, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := session.From(c)
		if !sess.Authenticated() {
			sess.AddFlash(session.FlashWarning, message)
			return c.Redirect(redirectTo)
		}

		c.Locals("user_id", sess.UserID)
		c.Locals("username", sess.Username)

		return c.Next()
	}
}

// LoginRequired sends anonymous visitors to the login page.
func LoginRequired() fiber.Handler {
	return RequireIdentity("/login", "Please log in to access this page")
}

// RegistrationRequired sends anonymous shoppers to the registration page.
func RegistrationRequired() fiber.Handler {
	return RequireIdentity("/register", "Please register or log in to place an order")
}
