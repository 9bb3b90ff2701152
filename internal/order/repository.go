package order

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/cart"
	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, customerID uint, paymentID, shippingID *uuid.UUID, status Status) (*Order, error)
	GetOrder(ctx context.Context, orderID uint) (*Order, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]*Order, error)

	SupplyProfileTx(ctx context.Context, orderID uint, kind string, profileID uuid.UUID, from, to Status) error
	CheckStock(ctx context.Context, orderID uint) ([]ShortItem, error)
	CapturePaymentTx(ctx context.Context, orderID uint) error
	AdvanceStatus(ctx context.Context, orderID uint, from, to Status) error
}

// ShortItem describes a line whose quantity can no longer be covered by the
// product's current stock.
type ShortItem struct {
	ProductID uint `json:"product_id"`
	Requested int  `json:"requested"`
	Available int  `json:"available"`
}

type repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) Repository {
	return &repository{db: database}
}

// CreateOrderTx turns the customer's Open cart into an order. The cart moves
// to Processing, its total is recomputed from the line totals and frozen on
// the order, and the cart becomes read-only from then on.
func (r *repository) CreateOrderTx(ctx context.Context, customerID uint, paymentID, shippingID *uuid.UUID, status Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "CreateOrderTx"),
		zap.Uint("customer_id", customerID),
	)

	var o Order

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var cartID uint
		var cartStatus cart.Status

		err := tx.QueryRowContext(ctx, `
			SELECT id, status
			FROM carts
			WHERE customer_id = $1
			  AND status IN ('OPEN', 'PROCESSING')
			FOR UPDATE
		`, customerID).Scan(&cartID, &cartStatus)
		if errors.Is(err, sql.ErrNoRows) {
			return cart.ErrNoOpenCart
		}
		if err != nil {
			return err
		}
		if cartStatus != cart.StatusOpen {
			return cart.ErrCartNotOpen
		}

		// Freeze the total from the snapshotted line totals, not from the
		// running carts.total_price, so any drift is corrected here.
		var total decimal.Decimal
		err = tx.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(line_total), 0)
			FROM cart_items
			WHERE cart_id = $1
		`, cartID).Scan(&total)
		if err != nil {
			return err
		}
		if total.IsZero() {
			var count int
			if err := tx.QueryRowContext(ctx, `
				SELECT COUNT(*) FROM cart_items WHERE cart_id = $1
			`, cartID).Scan(&count); err != nil {
				return err
			}
			if count == 0 {
				return cart.ErrCartEmpty
			}
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE carts
			SET status = 'PROCESSING', total_price = $1, updated_at = NOW()
			WHERE id = $2
		`, total, cartID); err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO orders (customer_id, cart_id, total_price, payment_profile_id, shipping_profile_id, status, paid)
			VALUES ($1, $2, $3, $4, $5, $6, FALSE)
			RETURNING id, created_at, updated_at
		`, customerID, cartID, total, paymentID, shippingID, status).Scan(
			&o.ID, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return err
		}

		o.CustomerID = customerID
		o.CartID = cartID
		o.TotalPrice = total
		o.PaymentProfileID = paymentID
		o.ShippingProfileID = shippingID
		o.Status = status
		return nil
	})
	if err != nil {
		log.Warn("checkout transaction failed", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.Uint("order_id", o.ID),
		zap.String("status", string(o.Status)),
	)
	return &o, nil
}

func (r *repository) GetOrder(ctx context.Context, orderID uint) (*Order, error) {
	const q = `
		SELECT id, customer_id, cart_id, total_price,
		       payment_profile_id, shipping_profile_id,
		       status, paid, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(
		&o.ID, &o.CustomerID, &o.CartID, &o.TotalPrice,
		&o.PaymentProfileID, &o.ShippingProfileID,
		&o.Status, &o.Paid, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load order",
			zap.Uint("order_id", orderID),
			zap.Error(err),
		)
		return nil, err
	}

	items, err := r.itemsFor(ctx, o.CartID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uint) ([]*Order, error) {
	const q = `
		SELECT id, customer_id, cart_id, total_price,
		       payment_profile_id, shipping_profile_id,
		       status, paid, created_at, updated_at
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list orders",
			zap.Uint("customer_id", customerID),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.CustomerID, &o.CartID, &o.TotalPrice,
			&o.PaymentProfileID, &o.ShippingProfileID,
			&o.Status, &o.Paid, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

// SupplyProfileTx fills one empty profile slot and moves the status along.
// The WHERE guard on the current status makes concurrent supplies lose
// cleanly instead of clobbering each other.
func (r *repository) SupplyProfileTx(ctx context.Context, orderID uint, kind string, profileID uuid.UUID, from, to Status) error {
	column := "shipping_profile_id"
	if kind == "PAYMENT" {
		column = "payment_profile_id"
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET `+column+` = $1, status = $2, updated_at = NOW()
		WHERE id = $3
		  AND status = $4
		  AND `+column+` IS NULL
	`, profileID, to, orderID, from)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// CheckStock reports the order's lines that current stock cannot cover. An
// empty slice means every line is coverable right now; it is advisory only,
// CapturePaymentTx re-checks under the decrement guard.
func (r *repository) CheckStock(ctx context.Context, orderID uint) ([]ShortItem, error) {
	const q = `
		SELECT i.product_id, i.quantity, p.amount_in_stock
		FROM orders o
		JOIN cart_items i ON i.cart_id = o.cart_id
		JOIN products p ON p.id = i.product_id
		WHERE o.id = $1
		  AND i.quantity > p.amount_in_stock
	`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var short []ShortItem
	for rows.Next() {
		var s ShortItem
		if err := rows.Scan(&s.ProductID, &s.Requested, &s.Available); err != nil {
			return nil, err
		}
		short = append(short, s)
	}
	return short, rows.Err()
}

// CapturePaymentTx decrements stock for every line and marks the order Paid,
// all or nothing. Each decrement is guarded by the available quantity; a
// zero-row update means a concurrent sale won the stock and the whole
// transaction rolls back with ErrStockConflict.
func (r *repository) CapturePaymentTx(ctx context.Context, orderID uint) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "CapturePaymentTx"),
		zap.Uint("order_id", orderID),
	)

	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var cartID uint
		err := tx.QueryRowContext(ctx, `
			SELECT cart_id
			FROM orders
			WHERE id = $1 AND status = 'IN_PROCESS' AND paid = FALSE
			FOR UPDATE
		`, orderID).Scan(&cartID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotReady
		}
		if err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT product_id, quantity
			FROM cart_items
			WHERE cart_id = $1
			ORDER BY product_id
		`, cartID)
		if err != nil {
			return err
		}

		type line struct {
			productID uint
			quantity  int
		}
		var lines []line
		for rows.Next() {
			var l line
			if err := rows.Scan(&l.productID, &l.quantity); err != nil {
				rows.Close()
				return err
			}
			lines = append(lines, l)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, l := range lines {
			res, err := tx.ExecContext(ctx, `
				UPDATE products
				SET amount_in_stock = amount_in_stock - $1
				WHERE id = $2
				  AND amount_in_stock >= $1
			`, l.quantity, l.productID)
			if err != nil {
				return err
			}
			affected, _ := res.RowsAffected()
			if affected == 0 {
				return ErrStockConflict
			}
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET paid = TRUE, status = 'PAID', updated_at = NOW()
			WHERE id = $1
		`, orderID); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE carts
			SET status = 'CLOSED', updated_at = NOW()
			WHERE id = $1
		`, cartID)
		return err
	})
	if err != nil {
		log.Warn("capture transaction failed", zap.Error(err))
		return err
	}

	log.Info("payment captured")
	return nil
}

// AdvanceStatus moves the order's fulfillment status one step. The WHERE
// guard on the expected current status rejects stale transitions.
func (r *repository) AdvanceStatus(ctx context.Context, orderID uint, from, to Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, orderID, from)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *repository) itemsFor(ctx context.Context, cartID uint) ([]cart.Item, error) {
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

	var items []cart.Item
	for rows.Next() {
		var it cart.Item
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
