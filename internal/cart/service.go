package cart

import (
	"context"
	"errors"

	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

// Service is the Cart Manager: it owns the customer's single mutable Open
// cart and keeps total_price equal to the sum of line totals.
type Service interface {
	GetOrCreateOpenCart(ctx context.Context) (*Cart, error)
	AddItem(ctx context.Context, productID uint, quantity int) (*Item, error)
	UpdateItem(ctx context.Context, itemID uint, quantity int) (*Item, error)
	RemoveItem(ctx context.Context, itemID uint) error
	Abandon(ctx context.Context) error
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

// GetOrCreateOpenCart returns the customer's Open/Processing cart, creating
// an empty Open cart when none exists.
func (s *service) GetOrCreateOpenCart(ctx context.Context) (*Cart, error) {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Cart"),
		zap.String("method", "GetOrCreateOpenCart"),
		zap.Uint("customer_id", customerID),
	)

	c, err := s.repo.GetOpenCart(ctx, customerID)
	if errors.Is(err, ErrCartConflict) {
		metrics.CartConflicts.Inc()
		log.Error("one-open-cart invariant broken", zap.Error(err))
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if c == nil {
		log.Info("creating cart")
		return s.repo.CreateCart(ctx, customerID)
	}

	return c, nil
}

// AddItem validates the requested quantity against live stock, snapshots the
// unit price and appends a new line. Stock is checked but not reserved here;
// the decrement happens only at payment capture.
func (s *service) AddItem(ctx context.Context, productID uint, quantity int) (*Item, error) {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Cart"),
		zap.String("method", "AddItem"),
		zap.Uint("customer_id", customerID),
		zap.Uint("product_id", productID),
		zap.Int("quantity", quantity),
	)

	if quantity <= 0 {
		log.Warn("invalid quantity")
		return nil, ErrInvalidQuantity
	}

	p, err := s.productRepo.GetByID(ctx, productID)
	if errors.Is(err, product.ErrProductNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	// Fail fast on requests that cannot succeed even against an empty cart.
	// The transaction is the authority: it re-checks stock against the
	// quantity the cart already holds for this product.
	if p.AmountInStock == 0 {
		log.Warn("product out of stock")
		return nil, ErrOutOfStock
	}
	if quantity > p.AmountInStock {
		log.Warn("insufficient stock", zap.Int("in_stock", p.AmountInStock))
		return nil, ErrInsufficientStock
	}

	item, err := s.repo.AddItemTx(ctx, AddItemParams{
		CustomerID: customerID,
		ProductID:  productID,
		Quantity:   quantity,
	})
	if errors.Is(err, ErrCartConflict) {
		metrics.CartConflicts.Inc()
		log.Error("one-open-cart invariant broken", zap.Error(err))
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	log.Info("item added",
		zap.Uint("item_id", item.ID),
		zap.String("line_total", item.LineTotal.StringFixed(2)),
	)
	return item, nil
}

// UpdateItem recomputes the line from the snapshotted unit price and adjusts
// the cart total by the delta.
func (s *service) UpdateItem(ctx context.Context, itemID uint, quantity int) (*Item, error) {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.repo.UpdateItemTx(ctx, UpdateItemParams{
		CustomerID: customerID,
		ItemID:     itemID,
		Quantity:   quantity,
	})
	if err != nil {
		logger.FromCtx(ctx).Warn("update item failed",
			zap.Uint("item_id", itemID),
			zap.Error(err),
		)
		return nil, err
	}

	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, itemID uint) error {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUserNotAuthenticated
	}

	return s.repo.RemoveItemTx(ctx, customerID, itemID)
}

// Abandon closes the Open cart without ordering.
func (s *service) Abandon(ctx context.Context) error {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUserNotAuthenticated
	}

	logger.FromCtx(ctx).Info("abandoning cart", zap.Uint("customer_id", customerID))
	return s.repo.AbandonCart(ctx, customerID)
}
