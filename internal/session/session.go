// Package session keeps per-browser state in a signed cookie.
//
// The state is a typed Data value encoded as the claims of an HS256 JWT. The
// cart is validated when the cookie is read; a cookie that fails signature,
// expiry or schema checks is replaced by an empty session.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"momo/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

const localsKey = "session"

// Flash categories.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Data is everything the storefront remembers about a browser.
type Data struct {
	UserID   string      `json:"user_id,omitempty"`
	Username string      `json:"username,omitempty"`
	Cart     models.Cart `json:"cart"`
	Flashes  []Flash     `json:"flashes,omitempty"`

	// ProfileAddress holds an address that could not be written to the store.
	ProfileAddress string `json:"profile_address,omitempty"`
}

// Authenticated reports whether a user is logged in.
func (d *Data) Authenticated() bool {
	return d.UserID != ""
}

// SetUser binds an identity to the session.
func (d *Data) SetUser(id, username string) {
	d.UserID = id
	d.Username = username
}

// ClearUser removes the identity; the cart is kept.
func (d *Data) ClearUser() {
	d.UserID = ""
	d.Username = ""
}

// AddFlash queues a notice for the next rendered page.
func (d *Data) AddFlash(category, message string) {
	d.Flashes = append(d.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns the queued notices and forgets them.
func (d *Data) PopFlashes() []Flash {
	flashes := d.Flashes
	d.Flashes = nil
	if flashes == nil {
		return []Flash{}
	}
	return flashes
}

func (d *Data) isZero() bool {
	return d.UserID == "" && d.Username == "" && d.Cart.IsEmpty() && len(d.Flashes) == 0 && d.ProfileAddress == ""
}

type claims struct {
	Session Data `json:"sess"`
	jwt.StandardClaims
}

// Store signs and verifies session cookies.
type Store struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewStore creates a Store signing with secret. Cookies expire after ttl.
func NewStore(secret string, ttl time.Duration, secure bool) *Store {
	return &Store{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

// Encode signs d into a cookie value.
func (s *Store) Encode(d *Data) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Session: *d,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Decode verifies a cookie value and returns the session it carries.
func (s *Store) Decode(value string) (*Data, error) {
	var c claims
	token, err := jwt.ParseWithClaims(value, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session")
	}
	if err := c.Session.Cart.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session cart: %w", err)
	}
	return &c.Session, nil
}

// Middleware loads the session before the handler runs and writes the cookie
// back only when the session changed.
func (s *Store) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		data := &Data{}
		if raw := c.Cookies(CookieName); raw != "" {
			decoded, err := s.Decode(raw)
			if err != nil {
				log.Printf("Discarding session cookie: %v", err)
			} else {
				data = decoded
			}
		}
		before, _ := json.Marshal(data)
		c.Locals(localsKey, data)

		err := c.Next()

		after, merr := json.Marshal(data)
		if merr != nil {
			log.Printf("Error encoding session: %v", merr)
			return err
		}
		if bytes.Equal(before, after) {
			return err
		}
		if data.isZero() {
			c.Cookie(&fiber.Cookie{
				Name:     CookieName,
				Value:    "",
				Path:     "/",
				Expires:  time.Unix(0, 0),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Secure:   s.secure,
			})
			return err
		}
		value, serr := s.Encode(data)
		if serr != nil {
			log.Printf("Error saving session: %v", serr)
			return err
		}
		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    value,
			Path:     "/",
			Expires:  time.Now().Add(s.ttl),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   s.secure,
		})
		return err
	}
}

// From returns the session attached to the request by Middleware. Outside the
// middleware it returns a throwaway empty session.
func From(c *fiber.Ctx) *Data {
	if data, ok := c.Locals(localsKey).(*Data); ok {
		return data
	}
	return &Data{}
}
