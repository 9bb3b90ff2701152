package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"id", "name", "description", "price", "amount_in_stock", "image_ref", "created_at",
		}).AddRow(1, "Kettle", "Steel kettle", "24.99", 5, nil, time.Now())

		mock.ExpectQuery("SELECT id, name, description, price, amount_in_stock").
			WithArgs(uint(1)).
			WillReturnRows(rows)

		catRows := sqlmock.NewRows([]string{"id", "name"}).
			AddRow(2, "Kitchen")
		mock.ExpectQuery("SELECT c.id, c.name").
			WithArgs(uint(1)).
			WillReturnRows(catRows)

		p, err := repo.GetByID(context.Background(), 1)
		assert.NoError(t, err)
		assert.Equal(t, "Kettle", p.Name)
		assert.Equal(t, 5, p.AmountInStock)
		assert.Equal(t, "24.99", p.Price.StringFixed(2))
		require.Len(t, p.Categories, 1)
		assert.Equal(t, "Kitchen", p.Categories[0].Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, description, price, amount_in_stock").
			WithArgs(uint(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(context.Background(), 99)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name, description, price, amount_in_stock").
			WillReturnError(errors.New("db error"))

		_, err := repo.GetByID(context.Background(), 1)
		assert.Error(t, err)
	})
}

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	rating := 4.5
	rows := sqlmock.NewRows([]string{
		"id", "name", "description", "price", "amount_in_stock", "image_ref", "created_at", "avg",
	}).
		AddRow(1, "Kettle", "", "24.99", 5, nil, time.Now(), &rating).
		AddRow(2, "Mug", "", "4.50", 30, nil, time.Now(), nil)

	mock.ExpectQuery("FROM products p").WillReturnRows(rows)

	products, err := repo.List(context.Background())
	assert.NoError(t, err)
	require.Len(t, products, 2)
	require.NotNil(t, products[0].Rating)
	assert.Equal(t, 4.5, *products[0].Rating)
	assert.Nil(t, products[1].Rating)
}
