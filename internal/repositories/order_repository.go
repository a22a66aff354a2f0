package repositories

import (
	"context"

	"momo/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// append-only: there is no update or delete.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
}
