package service

import (
	"context"

	"better-being/internal/events"
	"better-being/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter model.ProductFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) Categories(ctx context.Context) ([]model.CategorySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CategorySummary), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) LockByIDs(ctx context.Context, tx pgx.Tx, ids []string) ([]model.Product, error) {
	args := m.Called(ctx, tx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (bool, error) {
	args := m.Called(ctx, tx, productID, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) IncrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) error {
	args := m.Called(ctx, tx, productID, quantity)
	return args.Error(0)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) List(ctx context.Context, userID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartRepository) LockForCheckout(ctx context.Context, tx pgx.Tx, userID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartRepository) Add(ctx context.Context, userID int64, productID string, quantity int, size *string) (*model.CartItem, error) {
	args := m.Called(ctx, userID, productID, quantity, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartItem), args.Error(1)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, userID int64, itemID uuid.UUID, quantity int) (bool, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) Remove(ctx context.Context, userID int64, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCartRepository) Clear(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartRepository) ClearTx(ctx context.Context, tx pgx.Tx, userID int64) error {
	args := m.Called(ctx, tx, userID)
	return args.Error(0)
}

func (m *MockCartRepository) Summary(ctx context.Context, userID int64) (*model.CartSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartSummary), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (*model.Order, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) SaveIdempotencyKey(ctx context.Context, tx pgx.Tx, userID int64, key string, orderID uuid.UUID) error {
	args := m.Called(ctx, tx, userID, key, orderID)
	return args.Error(0)
}

// MockLoyaltyRepository is a mock implementation of LoyaltyRepository.
type MockLoyaltyRepository struct {
	mock.Mock
}

func (m *MockLoyaltyRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoyaltyRepository) GetBalance(ctx context.Context, userID int64) (*model.LoyaltyBalance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoyaltyBalance), args.Error(1)
}

func (m *MockLoyaltyRepository) AdjustBalance(ctx context.Context, tx pgx.Tx, userID int64, delta int) error {
	args := m.Called(ctx, tx, userID, delta)
	return args.Error(0)
}

func (m *MockLoyaltyRepository) DeductBalance(ctx context.Context, tx pgx.Tx, userID int64, points int) (bool, error) {
	args := m.Called(ctx, tx, userID, points)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoyaltyRepository) InsertTransaction(ctx context.Context, tx pgx.Tx, entry *model.LoyaltyTransaction) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockLoyaltyRepository) ListTransactions(ctx context.Context, userID int64, limit int) ([]model.LoyaltyTransaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LoyaltyTransaction), args.Error(1)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockReceiptStore is a mock implementation of receipt.Store.
type MockReceiptStore struct {
	mock.Mock
}

func (m *MockReceiptStore) Save(ctx context.Context, order *model.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing. Begin
// returns whatever savepoint the test configured.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
