package product

import (
	"context"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

// Service defines catalog browsing reads. Catalog writes are an admin
// concern handled outside this backend.
type Service interface {
	List(ctx context.Context) ([]*Product, error)
	Get(ctx context.Context, id uint) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]*Product, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uint) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.FromCtx(ctx).Warn("product lookup failed",
			zap.Uint("product_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	return p, nil
}
