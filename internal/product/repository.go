package product

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Product"),
		zap.String("method", "GetByID"),
		zap.Uint("product_id", id),
	)

	const q = `
		SELECT id, name, description, price, amount_in_stock, image_ref, created_at
		FROM products
		WHERE id = $1
	`

	var p Product
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price,
		&p.AmountInStock, &p.ImageRef, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}

	cats, err := r.categoriesFor(ctx, p.ID)
	if err != nil {
		log.Error("failed to load categories", zap.Error(err))
		return nil, err
	}
	p.Categories = cats

	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Product"),
		zap.String("method", "List"),
	)

	const q = `
		SELECT
			p.id, p.name, p.description, p.price,
			p.amount_in_stock, p.image_ref, p.created_at,
			AVG(f.rating)
		FROM products p
		LEFT JOIN feedbacks f ON f.product_id = p.id
		GROUP BY p.id
		ORDER BY p.id
	`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var res []*Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price,
			&p.AmountInStock, &p.ImageRef, &p.CreatedAt, &p.Rating,
		); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		res = append(res, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return res, nil
}

func (r *repository) categoriesFor(ctx context.Context, productID uint) ([]Category, error) {
	const q = `
		SELECT c.id, c.name
		FROM categories c
		JOIN product_categories pc ON pc.category_id = c.id
		WHERE pc.product_id = $1
		ORDER BY c.id
	`

	rows, err := r.db.QueryContext(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}
