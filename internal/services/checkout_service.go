package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"momo/internal/models"
	"momo/internal/repositories"
)

// DefaultPaymentMethod is used when the checkout form names none.
const DefaultPaymentMethod = "cod"

// CheckoutForm is the data submitted on the checkout page.
type CheckoutForm struct {
	Name    string `form:"name" validate:"required,max=255"`
	Email   string `form:"email" validate:"required,email,max=255"`
	Address string `form:"address" validate:"required"`
	Payment string `form:"payment" validate:"max=32"`
}

// CheckoutService turns a cart into a stored order.
type CheckoutService struct {
	orderRepo repositories.OrderRepository
	userRepo  repositories.UserRepository
	publisher EventPublisher
	// requirePersistence turns a failed order write into an error instead of
	// a confirmation without an order id.
	requirePersistence bool
}

// NewCheckoutService creates a new CheckoutService. publisher may be nil.
func NewCheckoutService(orderRepo repositories.OrderRepository, userRepo repositories.UserRepository, publisher EventPublisher, requirePersistence bool) *CheckoutService {
	return &CheckoutService{
		orderRepo:          orderRepo,
		userRepo:           userRepo,
		publisher:          publisher,
		requirePersistence: requirePersistence,
	}
}

// RequiresPersistence reports whether a failed order write aborts checkout.
func (s *CheckoutService) RequiresPersistence() bool {
	return s.requirePersistence
}

// PlaceOrder stores an order for the cart snapshot and saves the delivery
// address on the user. The cart itself is not modified; clearing it is the
// caller's job once PlaceOrder has returned.
//
// When the order cannot be written the confirmation carries a nil OrderID,
// unless strict persistence is configured, in which case ErrPersistence is
// returned.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID string, form CheckoutForm, cart *models.Cart) (*models.OrderConfirmation, error) {
	if form.Payment == "" {
		form.Payment = DefaultPaymentMethod
	}
	items := cart.Snapshot()
	totals := models.ComputeTotals(items)

	confirmation := &models.OrderConfirmation{
		Name:    form.Name,
		Email:   form.Email,
		Address: form.Address,
		Items:   items,
		Totals:  totals,
		Total:   totals.Total,
		Payment: form.Payment,
	}

	order := &models.Order{
		Name:    form.Name,
		Email:   form.Email,
		Total:   totals.Total,
		Address: form.Address,
		Items:   items,
		Payment: form.Payment,
	}
	if userID != "" {
		order.UserID = &userID
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		log.Printf("Order persistence failed: %v", err)
		if s.requirePersistence {
			return nil, fmt.Errorf("order %w: %v", ErrPersistence, err)
		}
		return confirmation, nil
	}
	confirmation.OrderID = &order.ID

	if userID != "" {
		s.saveAddress(ctx, userID, form.Address)
	}

	publishEvent(s.publisher, EventOrderPlaced, map[string]interface{}{
		"order_id":   order.ID,
		"user_id":    userID,
		"total":      order.Total,
		"payment":    order.Payment,
		"item_count": len(items),
	})
	return confirmation, nil
}

func (s *CheckoutService) saveAddress(ctx context.Context, userID, address string) {
	err := s.userRepo.UpdateAddress(ctx, userID, address)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrAddressUnsupported):
		log.Printf("Skipping address save for user %s: %v", userID, err)
	default:
		log.Printf("Failed to save address for user %s: %v", userID, err)
	}
}
