package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"better-being/internal/middleware"
	"better-being/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrderFromCart(ctx context.Context, userID int64, req *model.CheckoutRequest, key string) (*model.CheckoutResult, error) {
	args := m.Called(ctx, userID, req, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResult), args.Error(1)
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID int64, req *model.OrderRequest, key string) (*model.CheckoutResult, error) {
	args := m.Called(ctx, userID, req, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResult), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, userID int64) (*model.Order, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListUserOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID uuid.UUID, userID int64) (*model.Order, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Browse(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPage), args.Error(1)
}

func (m *MockProductService) Categories(ctx context.Context) ([]model.CategorySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CategorySummary), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) List(ctx context.Context, userID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, userID int64, req *model.AddToCartRequest) (*model.CartItem, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartItem), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, userID int64, itemID uuid.UUID, quantity int) error {
	args := m.Called(ctx, userID, itemID, quantity)
	return args.Error(0)
}

func (m *MockCartService) Remove(ctx context.Context, userID int64, itemID uuid.UUID) error {
	args := m.Called(ctx, userID, itemID)
	return args.Error(0)
}

func (m *MockCartService) Clear(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockCartService) Summary(ctx context.Context, userID int64) (*model.CartSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartSummary), args.Error(1)
}

// MockLoyaltyService is a mock implementation of LoyaltyService.
type MockLoyaltyService struct {
	mock.Mock
}

func (m *MockLoyaltyService) GetBalance(ctx context.Context, userID int64) (*model.LoyaltyBalance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoyaltyBalance), args.Error(1)
}

func (m *MockLoyaltyService) AddPoints(ctx context.Context, userID int64, points int, description string) (*model.LoyaltyTransaction, error) {
	args := m.Called(ctx, userID, points, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoyaltyTransaction), args.Error(1)
}

func (m *MockLoyaltyService) RedeemPoints(ctx context.Context, userID int64, points int, description string) (*model.LoyaltyTransaction, error) {
	args := m.Called(ctx, userID, points, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoyaltyTransaction), args.Error(1)
}

func (m *MockLoyaltyService) ListTransactions(ctx context.Context, userID int64) ([]model.LoyaltyTransaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LoyaltyTransaction), args.Error(1)
}

// newRequest builds a request with a JSON body. A string body is sent as is.
// userID 0 means an unauthenticated request.
func newRequest(t *testing.T, method, path string, body any, userID int64) *http.Request {
	t.Helper()

	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()

	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
