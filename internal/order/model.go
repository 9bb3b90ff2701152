package order

import (
	"time"

	"storefront-be/internal/cart"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is an immutable snapshot of a checked-out cart plus fulfillment
// state. TotalPrice is copied at checkout and never re-derived from the
// cart afterwards.
type Order struct {
	ID                uint            `json:"id"`
	CustomerID        uint            `json:"customer_id"`
	CartID            uint            `json:"cart_id"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	PaymentProfileID  *uuid.UUID      `json:"payment_profile_id,omitempty"`
	ShippingProfileID *uuid.UUID      `json:"shipping_profile_id,omitempty"`
	Status            Status          `json:"status"`
	Paid              bool            `json:"paid"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Items []cart.Item `json:"items,omitempty"`
}
