package order

import (
	"context"
	"errors"

	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/payment"
	"storefront-be/internal/profile"
	"storefront-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrUserNotAuthenticated = errors.New("user not authenticated")

// Service owns the order lifecycle: checkout from an Open cart, supplying
// profiles an order was created without, capturing payment, and walking the
// shipment statuses forward.
type Service interface {
	Checkout(ctx context.Context) (*Order, error)
	Get(ctx context.Context, orderID uint) (*Order, error)
	List(ctx context.Context) ([]*Order, error)

	SupplyMissingProfile(ctx context.Context, orderID uint, kind profile.Kind, profileID uuid.UUID) (*Order, error)
	CapturePayment(ctx context.Context, orderID uint) (*Order, error)
	AdvanceShipmentStatus(ctx context.Context, orderID uint, to Status) (*Order, error)
}

type service struct {
	repo     Repository
	profiles profile.Repository
	gateway  payment.Gateway
}

func NewService(repo Repository, profiles profile.Repository, gateway payment.Gateway) Service {
	return &service{repo: repo, profiles: profiles, gateway: gateway}
}

// Checkout converts the customer's Open cart into an order. Both default
// profiles are resolved up front; whichever is missing shows up in the
// initial status instead of blocking the checkout.
func (s *service) Checkout(ctx context.Context) (*Order, error) {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "Checkout"),
		zap.Uint("customer_id", customerID),
	)

	payProfile, err := s.profiles.GetDefault(ctx, customerID, profile.KindPayment)
	if err != nil {
		return nil, err
	}
	shipProfile, err := s.profiles.GetDefault(ctx, customerID, profile.KindShipping)
	if err != nil {
		return nil, err
	}

	var payID, shipID *uuid.UUID
	if payProfile != nil {
		payID = &payProfile.ID
	}
	if shipProfile != nil {
		shipID = &shipProfile.ID
	}

	status := InitialStatus(payID != nil, shipID != nil)

	o, err := s.repo.CreateOrderTx(ctx, customerID, payID, shipID, status)
	if err != nil {
		log.Warn("checkout failed", zap.Error(err))
		return nil, err
	}

	return s.repo.GetOrder(ctx, o.ID)
}

func (s *service) Get(ctx context.Context, orderID uint) (*Order, error) {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID && !utils.IsAdmin(ctx) {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *service) List(ctx context.Context) ([]*Order, error) {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	return s.repo.ListByCustomer(ctx, customerID)
}

// SupplyMissingProfile fills one empty profile slot on an incomplete order.
// Supplying a kind whose slot is already filled is a no-op, not an error.
func (s *service) SupplyMissingProfile(ctx context.Context, orderID uint, kind profile.Kind, profileID uuid.UUID) (*Order, error) {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}
	if !kind.Valid() {
		return nil, profile.ErrInvalidKind
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "SupplyMissingProfile"),
		zap.Uint("order_id", orderID),
		zap.String("kind", string(kind)),
	)

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, ErrForbidden
	}

	// GetByID scopes by customer, so a foreign or mismatched profile reads
	// as not found.
	p, err := s.profiles.GetByID(ctx, customerID, profileID)
	if err != nil {
		return nil, err
	}
	if p.Kind != kind {
		return nil, profile.ErrInvalidKind
	}

	if !o.Status.ProfileSuppliable() {
		return nil, ErrInvalidTransition
	}

	to, changes := o.Status.AfterSupply(kind)
	if !changes {
		log.Debug("profile slot already filled, no-op")
		return o, nil
	}

	err = s.repo.SupplyProfileTx(ctx, orderID, string(kind), profileID, o.Status, to)
	if err != nil {
		log.Warn("supply profile failed", zap.Error(err))
		return nil, err
	}

	return s.repo.GetOrder(ctx, orderID)
}

// CapturePayment charges the order's payment profile and, on success,
// decrements stock for every line atomically. Calling it on an already paid
// order reports ErrAlreadyPaid without touching the gateway.
func (s *service) CapturePayment(ctx context.Context, orderID uint) (*Order, error) {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "CapturePayment"),
		zap.Uint("order_id", orderID),
	)

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, ErrForbidden
	}
	if o.Paid {
		return nil, ErrAlreadyPaid
	}
	if o.Status != StatusInProcess {
		return nil, ErrNotReady
	}

	// Fail fast before charging the card. The capture transaction re-checks
	// under its decrement guard, so this stays advisory.
	short, err := s.repo.CheckStock(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(short) > 0 {
		metrics.StockConflicts.Inc()
		log.Warn("stock no longer covers order", zap.Int("short_lines", len(short)))
		return nil, ErrStockConflict
	}

	cardRef := o.PaymentProfileID.String()

	_, err = s.gateway.Capture(ctx, payment.CaptureRequest{
		OrderID:       o.ID,
		CustomerEmail: utils.GetUserEmailFromContext(ctx),
		Amount:        o.TotalPrice,
		Currency:      "USD",
		CardReference: cardRef,
	})
	if err != nil {
		log.Warn("gateway capture failed", zap.Error(err))
		return nil, err
	}

	err = s.repo.CapturePaymentTx(ctx, orderID)
	if errors.Is(err, ErrStockConflict) {
		// A concurrent sale took the stock between the gateway call and the
		// decrement. The order stays unpaid; the charge needs a manual void.
		metrics.StockConflicts.Inc()
		log.Error("stock conflict after successful capture", zap.Error(err))
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	return s.repo.GetOrder(ctx, orderID)
}

// AdvanceShipmentStatus moves a paid order one step along
// PAID -> SENT -> DELIVERED -> RECEIVED. Staff drive SENT and DELIVERED; the
// customer confirms RECEIVED on their own order.
func (s *service) AdvanceShipmentStatus(ctx context.Context, orderID uint, to Status) (*Order, error) {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if to == StatusReceived {
		if o.CustomerID != customerID {
			return nil, ErrForbidden
		}
	} else if !utils.IsAdmin(ctx) {
		return nil, ErrForbidden
	}

	if !CanAdvanceShipment(o.Status, to) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.AdvanceStatus(ctx, orderID, o.Status, to); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order status advanced",
		zap.Uint("order_id", orderID),
		zap.String("from", string(o.Status)),
		zap.String("to", string(to)),
	)
	return s.repo.GetOrder(ctx, orderID)
}
