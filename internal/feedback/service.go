package feedback

import (
	"context"
	"errors"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

// Service gates product reviews on purchase history.
type Service interface {
	CanReview(ctx context.Context, productID uint) (bool, error)
	Create(ctx context.Context, input CreateFeedbackInput) (*Feedback, error)
	ListByProduct(ctx context.Context, productID uint) ([]*Feedback, error)
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

// CanReview reports whether the customer has a paid order containing the
// product. It backs the UI's "write a review" affordance; Create re-checks.
func (s *service) CanReview(ctx context.Context, productID uint) (bool, error) {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return false, ErrUserNotAuthenticated
	}

	return s.repo.HasPaidOrderWithProduct(ctx, customerID, productID)
}

func (s *service) Create(ctx context.Context, input CreateFeedbackInput) (*Feedback, error) {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Feedback"),
		zap.String("method", "Create"),
		zap.Uint("customer_id", customerID),
		zap.Uint("product_id", input.ProductID),
	)

	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.productRepo.GetByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	eligible, err := s.repo.HasPaidOrderWithProduct(ctx, customerID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		log.Warn("feedback rejected, no qualifying purchase")
		return nil, ErrPurchaseRequired
	}

	f := &Feedback{
		CustomerID: customerID,
		ProductID:  input.ProductID,
		Rating:     input.Rating,
		Comment:    input.Comment,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	log.Info("feedback created", zap.Uint("feedback_id", f.ID), zap.Int("rating", f.Rating))
	return f, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uint) ([]*Feedback, error) {
	return s.repo.ListByProduct(ctx, productID)
}
