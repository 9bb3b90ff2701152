package httpapi

import (
	"errors"
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/feedback"
	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/profile"
	"storefront-be/internal/product"
	"storefront-be/internal/user"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type errResponse struct {
	Error string `json:"error"`
}

// respondError maps domain sentinels to HTTP status codes. Anything
// unrecognized is a 500 with a generic body; the real error goes to the log
// only.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, cart.ErrUserNotAuthenticated),
		errors.Is(err, profile.ErrUserNotAuthenticated),
		errors.Is(err, feedback.ErrUserNotAuthenticated),
		errors.Is(err, order.ErrUserNotAuthenticated),
		errors.Is(err, user.ErrInvalidCredentials):
		code, msg = http.StatusUnauthorized, err.Error()

	case errors.Is(err, order.ErrForbidden):
		code, msg = http.StatusForbidden, err.Error()

	case errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, feedback.ErrProductNotFound),
		errors.Is(err, cart.ErrCartItemNotFound),
		errors.Is(err, cart.ErrNoOpenCart),
		errors.Is(err, profile.ErrProfileNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		code, msg = http.StatusNotFound, err.Error()

	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, profile.ErrInvalidKind),
		errors.Is(err, feedback.ErrInvalidRating):
		code, msg = http.StatusBadRequest, err.Error()

	case errors.Is(err, cart.ErrOutOfStock),
		errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, cart.ErrCartNotOpen),
		errors.Is(err, cart.ErrCartEmpty),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrNotReady),
		errors.Is(err, order.ErrAlreadyPaid),
		errors.Is(err, order.ErrStockConflict),
		errors.Is(err, cart.ErrCartConflict),
		errors.Is(err, user.ErrEmailExists):
		code, msg = http.StatusConflict, err.Error()

	case errors.Is(err, feedback.ErrPurchaseRequired):
		code, msg = http.StatusForbidden, err.Error()

	case errors.Is(err, payment.ErrCaptureDeclined):
		code, msg = http.StatusPaymentRequired, err.Error()

	default:
		logger.FromCtx(r.Context()).Error("unhandled error", zap.Error(err))
	}

	render.Status(r, code)
	render.JSON(w, r, errResponse{Error: msg})
}
