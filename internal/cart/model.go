package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusProcessing Status = "PROCESSING"
	StatusClosed     Status = "CLOSED"
)

// Cart is the customer's single mutable pending selection. At most one cart
// per customer may be Open or Processing; the store enforces it with a
// partial unique index.
type Cart struct {
	ID         uint            `json:"id"`
	CustomerID uint            `json:"customer_id"`
	Status     Status          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Items []Item `json:"items"`
}

// Item carries the unit price snapshotted at add time. The live product
// price never flows back into an existing item.
type Item struct {
	ID          uint            `json:"id"`
	CartID      uint            `json:"cart_id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type AddItemParams struct {
	CustomerID uint
	ProductID  uint
	Quantity   int
}

type UpdateItemParams struct {
	CustomerID uint
	ItemID     uint
	Quantity   int
}
