package cart

import "errors"

var (
	// -- Authentication --
	ErrUserNotAuthenticated = errors.New("user not authenticated")

	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")

	// -- Stock --
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")

	// -- Resource State --
	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartNotOpen      = errors.New("cart is not open")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrNoOpenCart       = errors.New("no cart found with status open")

	// -- Invariant violations --
	// ErrCartConflict means more than one Open/Processing cart exists for a
	// customer. The store constraint should make this impossible; seeing it
	// signals a bug upstream and is escalated, never silently recovered.
	ErrCartConflict = errors.New("multiple open carts for customer")
)
