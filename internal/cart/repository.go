package cart

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	GetOpenCart(ctx context.Context, customerID uint) (*Cart, error)
	CreateCart(ctx context.Context, customerID uint) (*Cart, error)

	AddItemTx(ctx context.Context, params AddItemParams) (*Item, error)
	UpdateItemTx(ctx context.Context, params UpdateItemParams) (*Item, error)
	RemoveItemTx(ctx context.Context, customerID, itemID uint) error

	AbandonCart(ctx context.Context, customerID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) Repository {
	return &repository{db: database}
}

// GetOpenCart returns the customer's Open or Processing cart with its items,
// or nil when none exists. Finding more than one is ErrCartConflict.
func (r *repository) GetOpenCart(ctx context.Context, customerID uint) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Cart"),
		zap.String("method", "GetOpenCart"),
		zap.Uint("customer_id", customerID),
	)

	const q = `
		SELECT id, customer_id, status, total_price, created_at, updated_at
		FROM carts
		WHERE customer_id = $1
		  AND status IN ('OPEN', 'PROCESSING')
	`

	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var carts []*Cart
	for rows.Next() {
		var c Cart
		if err := rows.Scan(
			&c.ID, &c.CustomerID, &c.Status, &c.TotalPrice,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		carts = append(carts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(carts) {
	case 0:
		return nil, nil
	case 1:
		// fall through
	default:
		return nil, ErrCartConflict
	}

	c := carts[0]
	items, err := r.itemsFor(ctx, c.ID)
	if err != nil {
		log.Error("failed to load cart items", zap.Error(err))
		return nil, err
	}
	c.Items = items

	return c, nil
}

func (r *repository) CreateCart(ctx context.Context, customerID uint) (*Cart, error) {
	const q = `
		INSERT INTO carts (customer_id, status, total_price)
		VALUES ($1, 'OPEN', 0)
		RETURNING id, customer_id, status, total_price, created_at, updated_at
	`

	var c Cart
	err := r.db.QueryRowContext(ctx, q, customerID).Scan(
		&c.ID, &c.CustomerID, &c.Status, &c.TotalPrice,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to create cart",
			zap.Uint("customer_id", customerID),
			zap.Error(err),
		)
		return nil, err
	}

	return &c, nil
}

// AddItemTx adds an item to the customer's Open cart, creating the cart
// lazily. The stock check, the price snapshot and the total increment all
// happen inside one serializable transaction.
func (r *repository) AddItemTx(ctx context.Context, params AddItemParams) (*Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Cart"),
		zap.String("method", "AddItemTx"),
		zap.Uint("customer_id", params.CustomerID),
		zap.Uint("product_id", params.ProductID),
		zap.Int("quantity", params.Quantity),
	)

	var item Item

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		cartID, status, err := lockOpenCart(ctx, tx, params.CustomerID)
		if err != nil {
			return err
		}

		if cartID == 0 {
			err = tx.QueryRowContext(ctx, `
				INSERT INTO carts (customer_id, status, total_price)
				VALUES ($1, 'OPEN', 0)
				RETURNING id
			`, params.CustomerID).Scan(&cartID)
			if err != nil {
				return err
			}
			status = StatusOpen
		}

		if status != StatusOpen {
			return ErrCartNotOpen
		}

		var price decimal.Decimal
		var stock int
		err = tx.QueryRowContext(ctx, `
			SELECT price, amount_in_stock
			FROM products
			WHERE id = $1
		`, params.ProductID).Scan(&price, &stock)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		if stock == 0 {
			return ErrOutOfStock
		}

		// Stock is validated against the cart as a whole: quantity already
		// carried on existing lines for this product counts toward the limit.
		var inCart int
		err = tx.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(quantity), 0)
			FROM cart_items
			WHERE cart_id = $1 AND product_id = $2
		`, cartID, params.ProductID).Scan(&inCart)
		if err != nil {
			return err
		}
		if inCart+params.Quantity > stock {
			return ErrInsufficientStock
		}

		lineTotal := money.LineTotal(price, params.Quantity)

		err = tx.QueryRowContext(ctx, `
			INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, cartID, params.ProductID, params.Quantity, price, lineTotal).Scan(&item.ID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE carts
			SET total_price = total_price + $1, updated_at = NOW()
			WHERE id = $2
		`, lineTotal, cartID)
		if err != nil {
			return err
		}

		item.CartID = cartID
		item.ProductID = params.ProductID
		item.Quantity = params.Quantity
		item.UnitPrice = price
		item.LineTotal = lineTotal
		return nil
	})
	if err != nil {
		log.Warn("add item transaction failed", zap.Error(err))
		return nil, err
	}

	log.Debug("item added", zap.Uint("item_id", item.ID))
	return &item, nil
}

// UpdateItemTx changes an item's quantity. The line total is recomputed from
// the snapshotted unit price and the cart total is adjusted by the signed
// delta rather than rebuilt, so concurrent sibling updates cannot clobber
// each other's contribution.
func (r *repository) UpdateItemTx(ctx context.Context, params UpdateItemParams) (*Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Cart"),
		zap.String("method", "UpdateItemTx"),
		zap.Uint("customer_id", params.CustomerID),
		zap.Uint("item_id", params.ItemID),
		zap.Int("quantity", params.Quantity),
	)

	var item Item

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var cartID uint
		var status Status
		var oldLine decimal.Decimal

		err := tx.QueryRowContext(ctx, `
			SELECT c.id, c.status, i.product_id, i.unit_price, i.line_total
			FROM cart_items i
			JOIN carts c ON c.id = i.cart_id
			WHERE i.id = $1 AND c.customer_id = $2
			FOR UPDATE OF c
		`, params.ItemID, params.CustomerID).Scan(
			&cartID, &status, &item.ProductID, &item.UnitPrice, &oldLine,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCartItemNotFound
		}
		if err != nil {
			return err
		}

		if status != StatusOpen {
			return ErrCartNotOpen
		}

		var stock int
		err = tx.QueryRowContext(ctx, `
			SELECT amount_in_stock FROM products WHERE id = $1
		`, item.ProductID).Scan(&stock)
		if err != nil {
			return err
		}

		// Other lines for the same product keep their claim on the stock; only
		// the line being updated trades its old quantity for the new one.
		var siblings int
		err = tx.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(quantity), 0)
			FROM cart_items
			WHERE cart_id = $1 AND product_id = $2 AND id <> $3
		`, cartID, item.ProductID, params.ItemID).Scan(&siblings)
		if err != nil {
			return err
		}
		if siblings+params.Quantity > stock {
			return ErrInsufficientStock
		}

		newLine := money.LineTotal(item.UnitPrice, params.Quantity)

		_, err = tx.ExecContext(ctx, `
			UPDATE cart_items
			SET quantity = $1, line_total = $2
			WHERE id = $3
		`, params.Quantity, newLine, params.ItemID)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE carts
			SET total_price = total_price - $1 + $2, updated_at = NOW()
			WHERE id = $3
		`, oldLine, newLine, cartID)
		if err != nil {
			return err
		}

		item.ID = params.ItemID
		item.CartID = cartID
		item.Quantity = params.Quantity
		item.LineTotal = newLine
		return nil
	})
	if err != nil {
		log.Warn("update item transaction failed", zap.Error(err))
		return nil, err
	}

	return &item, nil
}

// RemoveItemTx deletes an item and subtracts its line total from the cart.
// The cart row itself stays, even when this was the last item.
func (r *repository) RemoveItemTx(ctx context.Context, customerID, itemID uint) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Cart"),
		zap.String("method", "RemoveItemTx"),
		zap.Uint("customer_id", customerID),
		zap.Uint("item_id", itemID),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var cartID uint
		var status Status
		var line decimal.Decimal

		err := tx.QueryRowContext(ctx, `
			SELECT c.id, c.status, i.line_total
			FROM cart_items i
			JOIN carts c ON c.id = i.cart_id
			WHERE i.id = $1 AND c.customer_id = $2
			FOR UPDATE OF c
		`, itemID, customerID).Scan(&cartID, &status, &line)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCartItemNotFound
		}
		if err != nil {
			return err
		}

		if status != StatusOpen {
			return ErrCartNotOpen
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM cart_items WHERE id = $1
		`, itemID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE carts
			SET total_price = total_price - $1, updated_at = NOW()
			WHERE id = $2
		`, line, cartID)
		return err
	})
	if err != nil {
		log.Warn("remove item transaction failed", zap.Error(err))
		return err
	}

	return nil
}

// AbandonCart closes the customer's Open cart without creating an order.
func (r *repository) AbandonCart(ctx context.Context, customerID uint) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE carts
		SET status = 'CLOSED', updated_at = NOW()
		WHERE customer_id = $1
		  AND status = 'OPEN'
	`, customerID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNoOpenCart
	}
	return nil
}

func (r *repository) itemsFor(ctx context.Context, cartID uint) ([]Item, error) {
	const q = `
		SELECT i.id, i.cart_id, i.product_id, p.name, i.quantity, i.unit_price, i.line_total
		FROM cart_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.cart_id = $1
		ORDER BY i.id
	`

	rows, err := r.db.QueryContext(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID, &it.CartID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.LineTotal,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// lockOpenCart locks the customer's Open/Processing cart row and returns its
// id and status. A zero id means no such cart exists. Two rows is the broken
// one-open-cart invariant.
func lockOpenCart(ctx context.Context, tx *sql.Tx, customerID uint) (uint, Status, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, status
		FROM carts
		WHERE customer_id = $1
		  AND status IN ('OPEN', 'PROCESSING')
		FOR UPDATE
	`, customerID)
	if err != nil {
		return 0, "", err
	}
	defer rows.Close()

	var id uint
	var status Status
	count := 0
	for rows.Next() {
		count++
		if count > 1 {
			return 0, "", ErrCartConflict
		}
		if err := rows.Scan(&id, &status); err != nil {
			return 0, "", err
		}
	}
	if err := rows.Err(); err != nil {
		return 0, "", err
	}

	return id, status, nil
}
