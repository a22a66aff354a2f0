package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"momo/internal/catalog"
	"momo/internal/models"
	"momo/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddToCartForm is posted by the "add to cart" buttons on the menu pages.
type AddToCartForm struct {
	ItemID    string   `form:"item_id" validate:"required,max=64"`
	ItemName  string   `form:"item_name" validate:"required,max=255"`
	ItemImage string   `form:"item_image" validate:"max=512"`
	ItemPrice *float64 `form:"item_price" validate:"required,gte=0,lte=10000"`
	Quantity  *int     `form:"quantity" validate:"required,gte=1,lte=999"`
	Category  string   `form:"category"`
	Spicy     string   `form:"spicy"`
}

func (f AddToCartForm) item() models.CartItem {
	return models.CartItem{
		ID:       f.ItemID,
		Name:     f.ItemName,
		Image:    f.ItemImage,
		Price:    *f.ItemPrice,
		Quantity: *f.Quantity,
		Category: f.Category,
		Spicy:    strings.EqualFold(f.Spicy, "true"),
	}
}

// flexInt accepts a whole JSON number (2 or 2.0) or an integer string.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("quantity %q is not a number", s)
		}
		*n = flexInt(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil || v != math.Trunc(v) {
		return fmt.Errorf("quantity is not a whole number")
	}
	// Out-of-range values only need to keep their sign; the cart caps them.
	switch {
	case v > math.MaxInt32:
		v = math.MaxInt32
	case v < math.MinInt32:
		v = math.MinInt32
	}
	*n = flexInt(v)
	return nil
}

// CartUpdateRequest is the JSON body of POST /cart/update.
type CartUpdateRequest struct {
	ID       string   `json:"id"`
	Quantity *flexInt `json:"quantity"`
	Action   string   `json:"action"`
}

// CartHandler serves the cart page and its mutation endpoints.
type CartHandler struct {
	images   *catalog.ImageResolver
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(images *catalog.ImageResolver) *CartHandler {
	return &CartHandler{
		images:   images,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleViewCart)
	cartRoutes.Post("/", h.HandleCartPost)
	cartRoutes.Post("/update", h.HandleUpdateCart)
	cartRoutes.Post("/clear", h.HandleClearCart)
}

// HandleViewCart renders the cart with its totals.
func (h *CartHandler) HandleViewCart(c *fiber.Ctx) error {
	sess := session.From(c)
	return render(c, "cart.html", cartView(&sess.Cart, h.images))
}

// HandleCartPost either replaces the cart with a JSON array or adds a single
// item posted from a menu form.
func (h *CartHandler) HandleCartPost(c *fiber.Ctx) error {
	if c.Is("json") {
		return h.replaceCart(c)
	}
	return h.addToCart(c)
}

func (h *CartHandler) replaceCart(c *fiber.Ctx) error {
	var items []models.CartItem
	if err := json.Unmarshal(c.Body(), &items); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid cart data: expected a JSON array of items")
	}

	sess := session.From(c)
	if err := sess.Cart.Replace(items); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"cart":   sess.Cart.Snapshot(),
		"totals": sess.Cart.Totals(),
	})
}

func (h *CartHandler) addToCart(c *fiber.Ctx) error {
	var form AddToCartForm
	if err := c.BodyParser(&form); err != nil {
		log.Printf("Error parsing add-to-cart form: %v", err)
		return flashRedirect(c, session.FlashDanger, "Could not add the item to your cart", "/cart")
	}
	if err := h.validate.Struct(form); err != nil {
		log.Printf("Rejected add-to-cart: %s", validationMessage(err))
		return flashRedirect(c, session.FlashDanger, "Could not add the item to your cart", "/cart")
	}

	item := form.item()
	if err := models.ValidateItem(item); err != nil {
		return flashRedirect(c, session.FlashDanger, "Could not add the item to your cart", "/cart")
	}

	sess := session.From(c)
	sess.Cart.Add(item)
	sess.AddFlash(session.FlashSuccess, fmt.Sprintf("%s added to your cart", item.Name))
	return c.Redirect("/cart")
}

// HandleUpdateCart changes the quantity of one item, or removes it when the
// action is "remove" or the quantity drops to zero.
func (h *CartHandler) HandleUpdateCart(c *fiber.Ctx) error {
	if !c.Is("json") {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request")
	}

	var req CartUpdateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid request: "+err.Error())
	}

	sess := session.From(c)
	if req.Action == "remove" {
		sess.Cart.Remove(req.ID)
	} else {
		qty := 1
		if req.Quantity != nil {
			qty = int(*req.Quantity)
		}
		sess.Cart.SetQuantity(req.ID, qty)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"cart":   sess.Cart.Snapshot(),
		"totals": sess.Cart.Totals(),
	})
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	sess := session.From(c)
	sess.Cart.Clear()

	if c.Is("json") {
		return c.JSON(fiber.Map{
			"status": "success",
			"cart":   []models.CartItem{},
		})
	}
	sess.AddFlash(session.FlashInfo, "Your cart has been cleared")
	return c.Redirect("/cart")
}
