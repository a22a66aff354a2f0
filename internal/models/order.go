package models

import (
	"time"

	"gorm.io/datatypes"
)

// Order is the immutable record written by a successful checkout.
type Order struct {
	ID        string                       `json:"order_id" gorm:"column:order_id;primaryKey;type:varchar(36)"`
	UserID    *string                      `json:"user_id" gorm:"type:varchar(36);index"`
	Name      string                       `json:"name" gorm:"type:varchar(255)"`
	Email     string                       `json:"email" gorm:"type:varchar(255)"`
	Total     float64                      `json:"total" gorm:"type:decimal(10,2)"`
	Address   string                       `json:"address" gorm:"type:text"`
	Items     datatypes.JSONSlice[CartItem] `json:"items"`
	Payment   string                       `json:"payment" gorm:"type:varchar(32)"`
	CreatedAt time.Time                    `json:"created_at"`
}

// OrderConfirmation is what the customer sees after submitting checkout.
// OrderID is nil when the order could not be stored.
type OrderConfirmation struct {
	OrderID *string    `json:"order_id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Address string     `json:"address"`
	Items   []CartItem `json:"items"`
	Totals  Totals     `json:"totals"`
	Total   float64    `json:"total"`
	Payment string     `json:"payment"`
}
