package cart

import (
	"context"
	"errors"
	"testing"

	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetOpenCart(ctx context.Context, customerID uint) (*Cart, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Cart), args.Error(1)
}

func (m *MockRepository) CreateCart(ctx context.Context, customerID uint) (*Cart, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Cart), args.Error(1)
}

func (m *MockRepository) AddItemTx(ctx context.Context, params AddItemParams) (*Item, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) UpdateItemTx(ctx context.Context, params UpdateItemParams) (*Item, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) RemoveItemTx(ctx context.Context, customerID, itemID uint) error {
	args := m.Called(ctx, customerID, itemID)
	return args.Error(0)
}

func (m *MockRepository) AbandonCart(ctx context.Context, customerID uint) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

// MockProductRepository is a mock for the product repository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context) ([]*product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func authedCtx(customerID uint) context.Context {
	return utils.SetUserContext(context.Background(), customerID, "c@example.com", utils.RoleCustomer)
}

func TestService_AddItem(t *testing.T) {
	kettle := &product.Product{
		ID:            7,
		Name:          "Kettle",
		Price:         decimal.RequireFromString("24.99"),
		AmountInStock: 5,
	}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		productRepo := new(MockProductRepository)
		svc := NewService(repo, productRepo)

		productRepo.On("GetByID", mock.Anything, uint(7)).Return(kettle, nil)
		repo.On("AddItemTx", mock.Anything, AddItemParams{CustomerID: 1, ProductID: 7, Quantity: 3}).
			Return(&Item{
				ID:        10,
				ProductID: 7,
				Quantity:  3,
				UnitPrice: kettle.Price,
				LineTotal: decimal.RequireFromString("74.97"),
			}, nil)

		item, err := svc.AddItem(authedCtx(1), 7, 3)
		assert.NoError(t, err)
		assert.Equal(t, "74.97", item.LineTotal.StringFixed(2))
		repo.AssertExpectations(t)
	})

	t.Run("InvalidQuantity", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockProductRepository))

		_, err := svc.AddItem(authedCtx(1), 7, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = svc.AddItem(authedCtx(1), 7, -2)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("ProductNotFound", func(t *testing.T) {
		repo := new(MockRepository)
		productRepo := new(MockProductRepository)
		svc := NewService(repo, productRepo)

		productRepo.On("GetByID", mock.Anything, uint(404)).
			Return(nil, product.ErrProductNotFound)

		_, err := svc.AddItem(authedCtx(1), 404, 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("OutOfStock", func(t *testing.T) {
		repo := new(MockRepository)
		productRepo := new(MockProductRepository)
		svc := NewService(repo, productRepo)

		empty := *kettle
		empty.AmountInStock = 0
		productRepo.On("GetByID", mock.Anything, uint(7)).Return(&empty, nil)

		_, err := svc.AddItem(authedCtx(1), 7, 1)
		assert.ErrorIs(t, err, ErrOutOfStock)
		repo.AssertNotCalled(t, "AddItemTx")
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		repo := new(MockRepository)
		productRepo := new(MockProductRepository)
		svc := NewService(repo, productRepo)

		productRepo.On("GetByID", mock.Anything, uint(7)).Return(kettle, nil)

		_, err := svc.AddItem(authedCtx(1), 7, 6)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		repo.AssertNotCalled(t, "AddItemTx")
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockProductRepository))

		_, err := svc.AddItem(context.Background(), 7, 1)
		assert.ErrorIs(t, err, ErrUserNotAuthenticated)
	})
}

func TestService_GetOrCreateOpenCart(t *testing.T) {
	t.Run("ReturnsExisting", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockProductRepository))

		existing := &Cart{ID: 3, CustomerID: 1, Status: StatusOpen}
		repo.On("GetOpenCart", mock.Anything, uint(1)).Return(existing, nil)

		c, err := svc.GetOrCreateOpenCart(authedCtx(1))
		assert.NoError(t, err)
		assert.Equal(t, uint(3), c.ID)
		repo.AssertNotCalled(t, "CreateCart")
	})

	t.Run("CreatesWhenMissing", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockProductRepository))

		repo.On("GetOpenCart", mock.Anything, uint(1)).Return(nil, nil)
		repo.On("CreateCart", mock.Anything, uint(1)).
			Return(&Cart{ID: 9, CustomerID: 1, Status: StatusOpen, TotalPrice: decimal.Zero}, nil)

		c, err := svc.GetOrCreateOpenCart(authedCtx(1))
		assert.NoError(t, err)
		assert.Equal(t, StatusOpen, c.Status)
		assert.True(t, c.TotalPrice.IsZero())
	})

	t.Run("ConflictSurfaces", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockProductRepository))

		repo.On("GetOpenCart", mock.Anything, uint(1)).Return(nil, ErrCartConflict)

		_, err := svc.GetOrCreateOpenCart(authedCtx(1))
		assert.ErrorIs(t, err, ErrCartConflict)
	})
}

func TestService_UpdateItem(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockProductRepository))

		repo.On("UpdateItemTx", mock.Anything, UpdateItemParams{CustomerID: 1, ItemID: 10, Quantity: 2}).
			Return(&Item{ID: 10, Quantity: 2, LineTotal: decimal.RequireFromString("49.98")}, nil)

		item, err := svc.UpdateItem(authedCtx(1), 10, 2)
		assert.NoError(t, err)
		assert.Equal(t, 2, item.Quantity)
	})

	t.Run("InvalidQuantity", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockProductRepository))

		_, err := svc.UpdateItem(authedCtx(1), 10, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("StockError", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockProductRepository))

		repo.On("UpdateItemTx", mock.Anything, mock.Anything).
			Return(nil, ErrInsufficientStock)

		_, err := svc.UpdateItem(authedCtx(1), 10, 50)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})
}

func TestService_RemoveItem(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockProductRepository))

	repo.On("RemoveItemTx", mock.Anything, uint(1), uint(10)).Return(nil)

	assert.NoError(t, svc.RemoveItem(authedCtx(1), 10))
	repo.AssertExpectations(t)
}

func TestService_Abandon(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockProductRepository))

		repo.On("AbandonCart", mock.Anything, uint(1)).Return(nil)
		assert.NoError(t, svc.Abandon(authedCtx(1)))
	})

	t.Run("NoOpenCart", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockProductRepository))

		repo.On("AbandonCart", mock.Anything, uint(1)).Return(ErrNoOpenCart)
		assert.ErrorIs(t, svc.Abandon(authedCtx(1)), ErrNoOpenCart)
	})
}

func TestService_RepoErrorPassthrough(t *testing.T) {
	repo := new(MockRepository)
	productRepo := new(MockProductRepository)
	svc := NewService(repo, productRepo)

	dbErr := errors.New("db down")
	productRepo.On("GetByID", mock.Anything, uint(7)).Return(nil, dbErr)

	_, err := svc.AddItem(authedCtx(1), 7, 1)
	assert.ErrorIs(t, err, dbErr)
}
