package service

import (
	"context"

	"better-being/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for product management.
type ProductService interface {
	// Browse returns one page of the catalogue narrowed by filter.
	Browse(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error)

	// Categories lists the catalogue categories with their product counts.
	Categories(ctx context.Context) ([]model.CategorySummary, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderService coordinates order creation, cancellation and status changes.
// Every mutating operation runs in a single database transaction.
type OrderService interface {
	// CreateOrderFromCart converts the user's cart into an order.
	CreateOrderFromCart(ctx context.Context, userID int64, req *model.CheckoutRequest, idempotencyKey string) (*model.CheckoutResult, error)

	// CreateOrder creates an order from explicit items without touching the cart.
	CreateOrder(ctx context.Context, userID int64, req *model.OrderRequest, idempotencyKey string) (*model.CheckoutResult, error)

	// CancelOrder cancels one of the user's orders, restoring stock and reversing loyalty points.
	CancelOrder(ctx context.Context, orderID uuid.UUID, userID int64) (*model.Order, error)

	// UpdateOrderStatus moves an order along its lifecycle.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error)

	// ListUserOrders returns the user's orders newest first.
	ListUserOrders(ctx context.Context, userID int64) ([]model.Order, error)

	// GetOrder returns one of the user's orders with its items.
	GetOrder(ctx context.Context, orderID uuid.UUID, userID int64) (*model.Order, error)
}

// CartService defines operations on a user's cart.
type CartService interface {
	List(ctx context.Context, userID int64) ([]model.CartItem, error)
	Add(ctx context.Context, userID int64, req *model.AddToCartRequest) (*model.CartItem, error)
	UpdateQuantity(ctx context.Context, userID int64, itemID uuid.UUID, quantity int) error
	Remove(ctx context.Context, userID int64, itemID uuid.UUID) error
	Clear(ctx context.Context, userID int64) error
	Summary(ctx context.Context, userID int64) (*model.CartSummary, error)
}

// LoyaltyService defines operations on the loyalty ledger.
type LoyaltyService interface {
	GetBalance(ctx context.Context, userID int64) (*model.LoyaltyBalance, error)
	AddPoints(ctx context.Context, userID int64, points int, description string) (*model.LoyaltyTransaction, error)
	RedeemPoints(ctx context.Context, userID int64, points int, description string) (*model.LoyaltyTransaction, error)
	ListTransactions(ctx context.Context, userID int64) ([]model.LoyaltyTransaction, error)
}
