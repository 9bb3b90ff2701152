package profile

import (
	"context"

	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service maintains payment and shipping profiles and the exactly-one-default
// invariant per (customer, kind).
type Service interface {
	List(ctx context.Context, kind Kind) ([]*Profile, error)
	Create(ctx context.Context, input CreateProfileInput) (*Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetDefault(ctx context.Context, kind Kind, id uuid.UUID) error
	ResolveDefault(ctx context.Context, customerID uint, kind Kind) (*Profile, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, kind Kind) ([]*Profile, error) {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	return s.repo.ListByCustomer(ctx, customerID, kind)
}

func (s *service) Create(ctx context.Context, input CreateProfileInput) (*Profile, error) {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotAuthenticated
	}
	if !input.Kind.Valid() {
		return nil, ErrInvalidKind
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Profile"),
		zap.String("method", "Create"),
		zap.Uint("customer_id", customerID),
		zap.String("kind", string(input.Kind)),
	)

	p := &Profile{
		ID:            uuid.New(),
		CustomerID:    customerID,
		Kind:          input.Kind,
		IsDefault:     input.SetAsDefault,
		CardNumber:    input.CardNumber,
		CardCVV:       input.CardCVV,
		CardExpiry:    input.CardExpiry,
		StreetAddress: input.StreetAddress,
		City:          input.City,
		State:         input.State,
		ZipCode:       input.ZipCode,
	}

	if err := s.repo.CreateTx(ctx, p); err != nil {
		log.Error("failed to create profile", zap.Error(err))
		return nil, err
	}

	log.Info("profile created",
		zap.String("profile_id", p.ID.String()),
		zap.Bool("is_default", p.IsDefault),
	)
	return p, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUserNotAuthenticated
	}

	logger.FromCtx(ctx).Info("deleting profile",
		zap.Uint("customer_id", customerID),
		zap.String("profile_id", id.String()),
	)
	return s.repo.DeleteTx(ctx, customerID, id)
}

func (s *service) SetDefault(ctx context.Context, kind Kind, id uuid.UUID) error {
	customerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUserNotAuthenticated
	}
	if !kind.Valid() {
		return ErrInvalidKind
	}

	return s.repo.SetDefaultTx(ctx, customerID, kind, id)
}

// ResolveDefault is the checkout-facing lookup. It takes the customer ID
// explicitly because checkout resolves profiles for the order's customer,
// and it always scopes by (customer, kind).
func (s *service) ResolveDefault(ctx context.Context, customerID uint, kind Kind) (*Profile, error) {
	return s.repo.GetDefault(ctx, customerID, kind)
}
