package profile

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindPayment  Kind = "PAYMENT"
	KindShipping Kind = "SHIPPING"
)

func (k Kind) Valid() bool {
	return k == KindPayment || k == KindShipping
}

// Profile is a customer's stored payment method or shipping address. At most
// one profile per (customer, kind) carries the default flag; a customer with
// exactly one profile of a kind gets it as the implicit default even when
// the flag was never set.
type Profile struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uint      `json:"customer_id"`
	Kind       Kind      `json:"kind"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`

	// payment fields
	CardNumber *string    `json:"card_number,omitempty"`
	CardCVV    *string    `json:"-"`
	CardExpiry *time.Time `json:"card_expiry,omitempty"`

	// shipping fields
	StreetAddress *string `json:"street_address,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	ZipCode       *string `json:"zip_code,omitempty"`
}

type CreateProfileInput struct {
	Kind         Kind
	SetAsDefault bool

	CardNumber *string
	CardCVV    *string
	CardExpiry *time.Time

	StreetAddress *string
	City          *string
	State         *string
	ZipCode       *string
}
