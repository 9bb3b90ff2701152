package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-be/internal/cart"
	"storefront-be/internal/feedback"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/profile"
	"storefront-be/internal/user"
	"storefront-be/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserService struct{ mock.Mock }

func (m *MockUserService) Register(ctx context.Context, email, password string) (string, user.User, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(user.User), args.Error(2)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (string, user.User, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(user.User), args.Error(2)
}

type MockProductService struct{ mock.Mock }

func (m *MockProductService) List(ctx context.Context) ([]*product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id uint) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

type MockCartService struct{ mock.Mock }

func (m *MockCartService) GetOrCreateOpenCart(ctx context.Context) (*cart.Cart, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, productID uint, quantity int) (*cart.Item, error) {
	args := m.Called(ctx, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Item), args.Error(1)
}

func (m *MockCartService) UpdateItem(ctx context.Context, itemID uint, quantity int) (*cart.Item, error) {
	args := m.Called(ctx, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Item), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, itemID uint) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockCartService) Abandon(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) Checkout(ctx context.Context) (*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, orderID uint) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) SupplyMissingProfile(ctx context.Context, orderID uint, kind profile.Kind, profileID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID, kind, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) CapturePayment(ctx context.Context, orderID uint) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) AdvanceShipmentStatus(ctx context.Context, orderID uint, to order.Status) (*order.Order, error) {
	args := m.Called(ctx, orderID, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockProfileService struct{ mock.Mock }

func (m *MockProfileService) List(ctx context.Context, kind profile.Kind) ([]*profile.Profile, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*profile.Profile), args.Error(1)
}

func (m *MockProfileService) Create(ctx context.Context, input profile.CreateProfileInput) (*profile.Profile, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

func (m *MockProfileService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProfileService) SetDefault(ctx context.Context, kind profile.Kind, id uuid.UUID) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockProfileService) ResolveDefault(ctx context.Context, customerID uint, kind profile.Kind) (*profile.Profile, error) {
	args := m.Called(ctx, customerID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profile.Profile), args.Error(1)
}

type MockFeedbackService struct{ mock.Mock }

func (m *MockFeedbackService) CanReview(ctx context.Context, productID uint) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFeedbackService) Create(ctx context.Context, input feedback.CreateFeedbackInput) (*feedback.Feedback, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*feedback.Feedback), args.Error(1)
}

func (m *MockFeedbackService) ListByProduct(ctx context.Context, productID uint) ([]*feedback.Feedback, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*feedback.Feedback), args.Error(1)
}

type testServices struct {
	users    *MockUserService
	products *MockProductService
	carts    *MockCartService
	orders   *MockOrderService
	profiles *MockProfileService
	feedback *MockFeedbackService
}

func newTestRouter(t *testing.T) (http.Handler, *testServices) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	s := &testServices{
		users:    new(MockUserService),
		products: new(MockProductService),
		carts:    new(MockCartService),
		orders:   new(MockOrderService),
		profiles: new(MockProfileService),
		feedback: new(MockFeedbackService),
	}
	h := NewHandler(s.users, s.products, s.carts, s.orders, s.profiles, s.feedback)
	return NewRouter(h), s
}

func bearerFor(t *testing.T, userID uint) string {
	t.Helper()
	token, err := user.GenerateJWT(userID, utils.RoleCustomer, "c@example.com")
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, router http.Handler, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.1:5000"
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Products(t *testing.T) {
	router, s := newTestRouter(t)

	s.products.On("List", mock.Anything).Return([]*product.Product{
		{ID: 7, Name: "Kettle", Price: decimal.RequireFromString("24.99"), AmountInStock: 5},
	}, nil)

	rec := doJSON(t, router, http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Kettle")
}

func TestRouter_GetProduct_NotFound(t *testing.T) {
	router, s := newTestRouter(t)

	s.products.On("Get", mock.Anything, uint(404)).Return(nil, product.ErrProductNotFound)

	rec := doJSON(t, router, http.MethodGet, "/products/404", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Healthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cart_conflicts")
	assert.Contains(t, rec.Body.String(), "stock_conflicts")
}

func TestRouter_CartRequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AddCartItem(t *testing.T) {
	router, s := newTestRouter(t)

	t.Run("Created", func(t *testing.T) {
		s.carts.On("AddItem", mock.Anything, uint(7), 3).
			Return(&cart.Item{ID: 10, ProductID: 7, Quantity: 3, LineTotal: decimal.RequireFromString("74.97")}, nil).Once()

		rec := doJSON(t, router, http.MethodPost, "/cart/items", bearerFor(t, 1),
			addItemRequest{ProductID: 7, Quantity: 3})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("InsufficientStockIsConflict", func(t *testing.T) {
		s.carts.On("AddItem", mock.Anything, uint(7), 99).
			Return(nil, cart.ErrInsufficientStock).Once()

		rec := doJSON(t, router, http.MethodPost, "/cart/items", bearerFor(t, 1),
			addItemRequest{ProductID: 7, Quantity: 99})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("InvalidQuantityIsBadRequest", func(t *testing.T) {
		s.carts.On("AddItem", mock.Anything, uint(7), -1).
			Return(nil, cart.ErrInvalidQuantity).Once()

		rec := doJSON(t, router, http.MethodPost, "/cart/items", bearerFor(t, 1),
			addItemRequest{ProductID: 7, Quantity: -1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_Checkout(t *testing.T) {
	router, s := newTestRouter(t)

	t.Run("Created", func(t *testing.T) {
		s.orders.On("Checkout", mock.Anything).
			Return(&order.Order{ID: 5, CustomerID: 1, Status: order.StatusMissingShipping}, nil).Once()

		rec := doJSON(t, router, http.MethodPost, "/cart/checkout", bearerFor(t, 1), nil)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "MISSING_SHIPPING")
	})

	t.Run("EmptyCartIsConflict", func(t *testing.T) {
		s.orders.On("Checkout", mock.Anything).Return(nil, cart.ErrCartEmpty).Once()

		rec := doJSON(t, router, http.MethodPost, "/cart/checkout", bearerFor(t, 1), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRouter_SupplyProfile(t *testing.T) {
	router, s := newTestRouter(t)
	profileID := uuid.New()

	s.orders.On("SupplyMissingProfile", mock.Anything, uint(5), profile.KindShipping, profileID).
		Return(&order.Order{ID: 5, Status: order.StatusInProcess}, nil)

	rec := doJSON(t, router, http.MethodPost, "/orders/5/profile", bearerFor(t, 1),
		supplyProfileRequest{Kind: "SHIPPING", ProfileID: profileID.String()})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "IN_PROCESS")
}

func TestRouter_SupplyProfile_BadUUID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/orders/5/profile", bearerFor(t, 1),
		supplyProfileRequest{Kind: "SHIPPING", ProfileID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_CapturePayment(t *testing.T) {
	router, s := newTestRouter(t)

	t.Run("Paid", func(t *testing.T) {
		s.orders.On("CapturePayment", mock.Anything, uint(5)).
			Return(&order.Order{ID: 5, Status: order.StatusPaid, Paid: true}, nil).Once()

		rec := doJSON(t, router, http.MethodPost, "/orders/5/capture", bearerFor(t, 2), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("NotReadyIsConflict", func(t *testing.T) {
		s.orders.On("CapturePayment", mock.Anything, uint(5)).
			Return(nil, order.ErrNotReady).Once()

		rec := doJSON(t, router, http.MethodPost, "/orders/5/capture", bearerFor(t, 3), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("StockConflict", func(t *testing.T) {
		s.orders.On("CapturePayment", mock.Anything, uint(5)).
			Return(nil, order.ErrStockConflict).Once()

		rec := doJSON(t, router, http.MethodPost, "/orders/5/capture", bearerFor(t, 4), nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRouter_Feedback(t *testing.T) {
	router, s := newTestRouter(t)

	t.Run("Created", func(t *testing.T) {
		s.feedback.On("Create", mock.Anything, feedback.CreateFeedbackInput{ProductID: 7, Rating: 4, Comment: "boils fast"}).
			Return(&feedback.Feedback{ID: 12, ProductID: 7, Rating: 4}, nil).Once()

		rec := doJSON(t, router, http.MethodPost, "/feedback", bearerFor(t, 1),
			createFeedbackRequest{ProductID: 7, Rating: 4, Comment: "boils fast"})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("NoPurchaseIsForbidden", func(t *testing.T) {
		s.feedback.On("Create", mock.Anything, mock.Anything).
			Return(nil, feedback.ErrPurchaseRequired).Once()

		rec := doJSON(t, router, http.MethodPost, "/feedback", bearerFor(t, 1),
			createFeedbackRequest{ProductID: 7, Rating: 5})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRouter_Auth(t *testing.T) {
	router, s := newTestRouter(t)

	t.Run("Register", func(t *testing.T) {
		s.users.On("Register", mock.Anything, "a@example.com", "hunter2222").
			Return("tok", user.User{ID: 1, Email: "a@example.com"}, nil).Once()

		rec := doJSON(t, router, http.MethodPost, "/auth/register", "",
			credentialsRequest{Email: "a@example.com", Password: "hunter2222"})
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "tok")
	})

	t.Run("ShortPasswordRejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/auth/register", "",
			credentialsRequest{Email: "a@example.com", Password: "short"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		s.users.AssertNotCalled(t, "Register")
	})

	t.Run("LoginBadCredentials", func(t *testing.T) {
		s.users.On("Login", mock.Anything, "a@example.com", "wrong").
			Return("", user.User{}, user.ErrInvalidCredentials).Once()

		rec := doJSON(t, router, http.MethodPost, "/auth/login", "",
			credentialsRequest{Email: "a@example.com", Password: "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRouter_Profiles(t *testing.T) {
	router, s := newTestRouter(t)
	id := uuid.New()

	t.Run("SetDefault", func(t *testing.T) {
		s.profiles.On("SetDefault", mock.Anything, profile.KindPayment, id).Return(nil).Once()

		rec := doJSON(t, router, http.MethodPost, "/profiles/"+id.String()+"/default?kind=PAYMENT", bearerFor(t, 1), nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("ListEmptyIsArray", func(t *testing.T) {
		s.profiles.On("List", mock.Anything, profile.KindShipping).
			Return([]*profile.Profile(nil), nil).Once()

		rec := doJSON(t, router, http.MethodGet, "/profiles?kind=SHIPPING", bearerFor(t, 1), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}
