package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	AmountInStock int             `json:"amount_in_stock"`
	ImageRef      *string         `json:"image_ref,omitempty"`
	Categories    []Category      `json:"categories,omitempty"`
	Rating        *float64        `json:"rating,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
