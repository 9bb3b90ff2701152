package feedback

import (
	"context"
	"database/sql"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	HasPaidOrderWithProduct(ctx context.Context, customerID, productID uint) (bool, error)
	Create(ctx context.Context, f *Feedback) error
	ListByProduct(ctx context.Context, productID uint) ([]*Feedback, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) Repository {
	return &repository{db: database}
}

// HasPaidOrderWithProduct is the eligibility check: the customer must own a
// paid order whose cart holds the product. Unpaid and incomplete orders do
// not count.
func (r *repository) HasPaidOrderWithProduct(ctx context.Context, customerID, productID uint) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM orders o
			JOIN cart_items i ON i.cart_id = o.cart_id
			WHERE o.customer_id = $1
			  AND o.paid = TRUE
			  AND i.product_id = $2
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, q, customerID, productID).Scan(&exists)
	if err != nil {
		logger.FromCtx(ctx).Error("eligibility query failed",
			zap.Uint("customer_id", customerID),
			zap.Uint("product_id", productID),
			zap.Error(err),
		)
		return false, err
	}
	return exists, nil
}

func (r *repository) Create(ctx context.Context, f *Feedback) error {
	const q = `
		INSERT INTO feedbacks (customer_id, product_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, q, f.CustomerID, f.ProductID, f.Rating, f.Comment).
		Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to create feedback",
			zap.Uint("customer_id", f.CustomerID),
			zap.Uint("product_id", f.ProductID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *repository) ListByProduct(ctx context.Context, productID uint) ([]*Feedback, error) {
	const q = `
		SELECT id, customer_id, product_id, rating, comment, created_at
		FROM feedbacks
		WHERE product_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(
			&f.ID, &f.CustomerID, &f.ProductID, &f.Rating, &f.Comment, &f.CreatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, &f)
	}
	return list, rows.Err()
}
