package feedback

import "errors"

var (
	ErrUserNotAuthenticated = errors.New("user not authenticated")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
	ErrPurchaseRequired     = errors.New("feedback requires a paid order containing the product")
	ErrProductNotFound      = errors.New("product not found")
)
