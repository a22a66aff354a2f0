package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	// FreeDeliveryThreshold is the subtotal from which delivery is free.
	FreeDeliveryThreshold = 30.0
	// DeliveryFee is charged on orders below FreeDeliveryThreshold.
	DeliveryFee = 2.0
	// MaxQuantity caps the quantity of a single cart line.
	MaxQuantity = 999
	// MaxPrice caps the unit price of a cart item.
	MaxPrice = 10000.0
)

// CartItem is a single line of a shopping cart.
type CartItem struct {
	ID       string  `json:"id" validate:"required,max=64"`
	Name     string  `json:"name" validate:"required,max=255"`
	Image    string  `json:"image" validate:"max=512"`
	Price    float64 `json:"price" validate:"gte=0,lte=10000"`
	Quantity int     `json:"quantity" validate:"gte=1,lte=999"`
	Category string  `json:"category" validate:"max=64"`
	Spicy    bool    `json:"spicy"`
}

// LineTotal returns price times quantity.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Totals is derived from a cart snapshot and never stored on its own.
type Totals struct {
	Subtotal              float64 `json:"subtotal"`
	DeliveryFee           float64 `json:"delivery_fee"`
	Total                 float64 `json:"total"`
	FreeDeliveryRemaining float64 `json:"free_delivery_remaining"`
}

// Cart is an ordered list of items; insertion order is display order.
type Cart struct {
	Items []CartItem `json:"items"`
}

var cartValidate = validator.New()

// ErrInvalidCartItem is returned when an item fails schema validation.
var ErrInvalidCartItem = errors.New("invalid cart item")

// ValidateItem checks a single item against the cart item schema.
func ValidateItem(item CartItem) error {
	if err := cartValidate.Struct(item); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidCartItem, item.ID, err)
	}
	return nil
}

// Validate checks every item and rejects duplicate ids.
func (c *Cart) Validate() error {
	seen := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		if err := ValidateItem(item); err != nil {
			return err
		}
		if seen[item.ID] {
			return fmt.Errorf("%w %q: duplicate id", ErrInvalidCartItem, item.ID)
		}
		seen[item.ID] = true
	}
	return nil
}

// Add merges item into the cart: an existing line with the same id gets its
// quantity increased, otherwise the item is appended. Quantities are clamped
// to [1, MaxQuantity].
func (c *Cart) Add(item CartItem) {
	for i := range c.Items {
		if c.Items[i].ID == item.ID {
			c.Items[i].Quantity = clampQuantity(c.Items[i].Quantity, item.Quantity)
			return
		}
	}
	item.Quantity = clampQuantity(0, item.Quantity)
	c.Items = append(c.Items, item)
}

// clampQuantity adds two non-negative quantities without leaving [1, MaxQuantity].
func clampQuantity(have, add int) int {
	if add < 0 {
		add = 0
	}
	if have >= MaxQuantity || add >= MaxQuantity-have {
		return MaxQuantity
	}
	if have+add < 1 {
		return 1
	}
	return have + add
}

// SetQuantity overwrites the quantity of the item with the given id, removing
// it when qty <= 0 and capping it at MaxQuantity. Unknown ids are ignored.
func (c *Cart) SetQuantity(id string, qty int) {
	if qty <= 0 {
		c.Remove(id)
		return
	}
	if qty > MaxQuantity {
		qty = MaxQuantity
	}
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Quantity = qty
			return
		}
	}
}

// Remove deletes the item with the given id if present.
func (c *Cart) Remove(id string) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Replace swaps the whole content of the cart. Items with a non-positive
// quantity are dropped; any other invalid item rejects the replacement and
// leaves the cart unchanged. Repeated ids are merged.
func (c *Cart) Replace(items []CartItem) error {
	next := Cart{}
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if err := ValidateItem(item); err != nil {
			return err
		}
		next.Add(item)
	}
	c.Items = next.Items
	return nil
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.Items)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot returns a copy of the items that is safe to keep after the cart
// changes.
func (c *Cart) Snapshot() []CartItem {
	out := make([]CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}

// Totals computes subtotal, delivery fee and total from the current items.
func (c *Cart) Totals() Totals {
	return ComputeTotals(c.Items)
}

// ComputeTotals prices a list of items.
func ComputeTotals(items []CartItem) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	fee := DeliveryFee
	if subtotal >= FreeDeliveryThreshold {
		fee = 0
	}
	remaining := FreeDeliveryThreshold - subtotal
	if remaining < 0 {
		remaining = 0
	}
	return Totals{
		Subtotal:              subtotal,
		DeliveryFee:           fee,
		Total:                 subtotal + fee,
		FreeDeliveryRemaining: remaining,
	}
}
