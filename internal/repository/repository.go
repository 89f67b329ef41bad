package repository

import (
	"context"

	"better-being/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Transactor starts database transactions. Methods that take a pgx.Tx run
// inside the caller's transaction; the caller owns commit and rollback.
type Transactor interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List returns the page of products matching filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// Count returns how many products match filter, ignoring Limit and Offset.
	Count(ctx context.Context, filter model.ProductFilter) (int, error)

	// Categories lists the non-empty categories by name.
	Categories(ctx context.Context) ([]model.CategorySummary, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// LockByIDs reads and row-locks the given products in id order.
	LockByIDs(ctx context.Context, tx pgx.Tx, ids []string) ([]model.Product, error)

	// DecrementStock subtracts quantity only when the product is in stock and
	// holds at least quantity units. It reports whether the row was updated.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (bool, error)

	// IncrementStock returns quantity units to stock.
	IncrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) error
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// List returns the user's cart lines joined with product data, oldest first.
	List(ctx context.Context, userID int64) ([]model.CartItem, error)

	// LockForCheckout returns the user's cart lines ordered by product id and
	// locks both the lines and their products until tx ends.
	LockForCheckout(ctx context.Context, tx pgx.Tx, userID int64) ([]model.CartItem, error)

	// Add inserts a line or merges quantity into the existing line for the
	// same product and size.
	Add(ctx context.Context, userID int64, productID string, quantity int, size *string) (*model.CartItem, error)

	// UpdateQuantity sets the quantity of a line owned by userID.
	UpdateQuantity(ctx context.Context, userID int64, itemID uuid.UUID, quantity int) (bool, error)

	// Remove deletes a line owned by userID.
	Remove(ctx context.Context, userID int64, itemID uuid.UUID) (bool, error)

	// Clear deletes every line of the user's cart and returns how many were removed.
	Clear(ctx context.Context, userID int64) (int64, error)

	// ClearTx deletes every line of the user's cart inside tx.
	ClearTx(ctx context.Context, tx pgx.Tx, userID int64) error

	// Summary aggregates the user's cart.
	Summary(ctx context.Context, userID int64) (*model.CartSummary, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	Transactor

	// CreateOrder inserts a new order within the provided transaction.
	// Returns ErrOrderNumberTaken when the order number already exists.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetForUpdate retrieves and row-locks an order and its items inside tx.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// ListByUser returns the user's orders newest first with item counts.
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)

	// UpdateStatus sets the order status inside tx.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error

	// FindByIdempotencyKey returns the order recorded for the user's key. Returns nil when absent.
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (*model.Order, error)

	// SaveIdempotencyKey records key -> order inside tx. Returns
	// model.ErrDuplicateRequest when another request already claimed the key.
	SaveIdempotencyKey(ctx context.Context, tx pgx.Tx, userID int64, key string, orderID uuid.UUID) error
}

// LoyaltyRepository defines the interface for loyalty balance and ledger operations.
type LoyaltyRepository interface {
	Transactor

	// GetBalance returns the user's point balance. Returns nil when the user does not exist.
	GetBalance(ctx context.Context, userID int64) (*model.LoyaltyBalance, error)

	// AdjustBalance adds delta (which may be negative) to the balance inside tx.
	// Returns model.ErrUserNotFound when the user does not exist.
	AdjustBalance(ctx context.Context, tx pgx.Tx, userID int64, delta int) error

	// DeductBalance subtracts points only when the balance covers them and
	// reports whether it did.
	DeductBalance(ctx context.Context, tx pgx.Tx, userID int64, points int) (bool, error)

	// InsertTransaction appends a ledger entry inside tx.
	InsertTransaction(ctx context.Context, tx pgx.Tx, entry *model.LoyaltyTransaction) error

	// ListTransactions returns the user's ledger entries newest first.
	ListTransactions(ctx context.Context, userID int64, limit int) ([]model.LoyaltyTransaction, error)
}
