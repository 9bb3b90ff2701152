package profile

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	ListByCustomer(ctx context.Context, customerID uint, kind Kind) ([]*Profile, error)
	GetByID(ctx context.Context, customerID uint, id uuid.UUID) (*Profile, error)
	GetDefault(ctx context.Context, customerID uint, kind Kind) (*Profile, error)

	CreateTx(ctx context.Context, p *Profile) error
	SetDefaultTx(ctx context.Context, customerID uint, kind Kind, id uuid.UUID) error
	DeleteTx(ctx context.Context, customerID uint, id uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) Repository {
	return &repository{db: database}
}

const profileColumns = `
	id, customer_id, kind, is_default, created_at,
	card_number, card_cvv, card_expiry,
	street_address, city, state, zip_code
`

func scanProfile(row interface{ Scan(...any) error }) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.CustomerID, &p.Kind, &p.IsDefault, &p.CreatedAt,
		&p.CardNumber, &p.CardCVV, &p.CardExpiry,
		&p.StreetAddress, &p.City, &p.State, &p.ZipCode,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uint, kind Kind) ([]*Profile, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Profile"),
		zap.String("method", "ListByCustomer"),
		zap.Uint("customer_id", customerID),
		zap.String("kind", string(kind)),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE customer_id = $1 AND kind = $2
		ORDER BY is_default DESC, created_at DESC
	`, customerID, kind)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var res []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, customerID uint, id uuid.UUID) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id = $1 AND customer_id = $2
	`, id, customerID)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetDefault resolves the default profile of a kind. The flagged row wins;
// with no flag but exactly one profile on file, that lone profile is the
// implicit default. Always scoped by (customer, kind).
func (r *repository) GetDefault(ctx context.Context, customerID uint, kind Kind) (*Profile, error) {
	profiles, err := r.ListByCustomer(ctx, customerID, kind)
	if err != nil {
		return nil, err
	}

	for _, p := range profiles {
		if p.IsDefault {
			return p, nil
		}
	}
	if len(profiles) == 1 {
		return profiles[0], nil
	}
	return nil, nil
}

// CreateTx inserts a profile. The first profile of its kind becomes default
// regardless of what the caller asked; otherwise an explicit default request
// clears the previous flag in the same transaction.
func (r *repository) CreateTx(ctx context.Context, p *Profile) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Profile"),
		zap.String("method", "CreateTx"),
		zap.Uint("customer_id", p.CustomerID),
		zap.String("kind", string(p.Kind)),
	)

	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var existing int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM profiles
			WHERE customer_id = $1 AND kind = $2
		`, p.CustomerID, p.Kind).Scan(&existing)
		if err != nil {
			return err
		}

		if existing == 0 {
			p.IsDefault = true
		} else if p.IsDefault {
			if _, err := tx.ExecContext(ctx, `
				UPDATE profiles SET is_default = false
				WHERE customer_id = $1 AND kind = $2 AND is_default = true
			`, p.CustomerID, p.Kind); err != nil {
				return err
			}
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO profiles (
				id, customer_id, kind, is_default,
				card_number, card_cvv, card_expiry,
				street_address, city, state, zip_code
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			RETURNING created_at
		`,
			p.ID, p.CustomerID, p.Kind, p.IsDefault,
			p.CardNumber, p.CardCVV, p.CardExpiry,
			p.StreetAddress, p.City, p.State, p.ZipCode,
		).Scan(&p.CreatedAt)
		if err != nil {
			log.Error("insert failed", zap.Error(err))
			return err
		}
		return nil
	})
}

// SetDefaultTx moves the default flag to the target profile. Clear and set
// commit together; no observable state has zero or two defaults.
func (r *repository) SetDefaultTx(ctx context.Context, customerID uint, kind Kind, id uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Profile"),
		zap.String("method", "SetDefaultTx"),
		zap.Uint("customer_id", customerID),
		zap.String("profile_id", id.String()),
	)

	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM profiles
				WHERE id = $1 AND customer_id = $2 AND kind = $3
			)
		`, id, customerID, kind).Scan(&exists)
		if err != nil {
			return err
		}
		if !exists {
			return ErrProfileNotFound
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE profiles SET is_default = false
			WHERE customer_id = $1 AND kind = $2 AND is_default = true
		`, customerID, kind); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE profiles SET is_default = true
			WHERE id = $1
		`, id); err != nil {
			log.Error("set default failed", zap.Error(err))
			return err
		}
		return nil
	})
}

// DeleteTx removes a profile. When the default goes away and siblings
// remain, the most recently created one takes over the flag so the
// exactly-one-default property keeps holding.
func (r *repository) DeleteTx(ctx context.Context, customerID uint, id uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Profile"),
		zap.String("method", "DeleteTx"),
		zap.Uint("customer_id", customerID),
		zap.String("profile_id", id.String()),
	)

	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var kind Kind
		var wasDefault bool
		err := tx.QueryRowContext(ctx, `
			SELECT kind, is_default FROM profiles
			WHERE id = $1 AND customer_id = $2
			FOR UPDATE
		`, id, customerID).Scan(&kind, &wasDefault)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProfileNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM profiles WHERE id = $1
		`, id); err != nil {
			return err
		}

		if wasDefault {
			if _, err := tx.ExecContext(ctx, `
				UPDATE profiles SET is_default = true
				WHERE id = (
					SELECT id FROM profiles
					WHERE customer_id = $1 AND kind = $2
					ORDER BY created_at DESC
					LIMIT 1
				)
			`, customerID, kind); err != nil {
				log.Error("promote new default failed", zap.Error(err))
				return err
			}
		}
		return nil
	})
}
