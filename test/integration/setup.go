package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"better-being/internal/config"
	"better-being/internal/database"
	"better-being/internal/events"
	"better-being/internal/receipt"
	"better-being/internal/repository"
	"better-being/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:   10,
		MinConnections:   2,
		MaxConnLifetime:  5 * time.Minute,
		StatementTimeout: 30 * time.Second,
		IdleInTxTimeout:  60 * time.Second,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromConnString(ctx, connStr, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Product is a catalogue row seeded by the tests.
type Product struct {
	ID    string
	Name  string
	Price string
	Stock int
}

// SeedProducts inserts test products into the database.
func SeedProducts(t *testing.T, pool *pgxpool.Pool, products ...Product) {
	t.Helper()

	ctx := context.Background()

	for _, p := range products {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, price, category, stock_count, in_stock) VALUES ($1, $2, $3, $4, $5, TRUE)`,
			p.ID, p.Name, decimal.RequireFromString(p.Price), "Wellness", p.Stock,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.ID, err)
		}
	}
}

// SeedUser inserts a user and returns its id.
func SeedUser(t *testing.T, pool *pgxpool.Pool, email string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (email) VALUES ($1) RETURNING id`, email,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return id
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_idempotency_keys", "loyalty_transactions", "order_items", "orders", "cart", "products", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// StockOf returns the current stock count of a product.
func StockOf(t *testing.T, pool *pgxpool.Pool, productID string) int {
	t.Helper()

	var stock int
	if err := pool.QueryRow(context.Background(), `SELECT stock_count FROM products WHERE id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock of %s: %v", productID, err)
	}
	return stock
}

// PointsOf returns the current loyalty balance of a user.
func PointsOf(t *testing.T, pool *pgxpool.Pool, userID int64) int {
	t.Helper()

	var points int
	if err := pool.QueryRow(context.Background(), `SELECT loyalty_points FROM users WHERE id = $1`, userID).Scan(&points); err != nil {
		t.Fatalf("failed to read points of user %d: %v", userID, err)
	}
	return points
}

// Count runs a COUNT query and returns its result.
func Count(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	return n
}

// Services is the wired service layer used by the tests.
type Services struct {
	Products service.ProductService
	Cart     service.CartService
	Orders   service.OrderService
	Loyalty  service.LoyaltyService
}

// NewServices wires the real repositories and services against pool. Receipts
// are archived under receiptDir.
func NewServices(pool *pgxpool.Pool, receiptDir string) Services {
	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	loyaltyRepo := repository.NewLoyaltyRepository(pool, logger)

	pricing := service.NewPricing(config.OrderConfig{
		TaxRate:               decimal.RequireFromString("0.15"),
		ShippingFee:           decimal.NewFromInt(50),
		FreeShippingThreshold: decimal.NewFromInt(500),
		NumberAttempts:        3,
	})

	return Services{
		Products: service.NewProductService(productRepo, logger),
		Cart:     service.NewCartService(cartRepo, productRepo, logger),
		Loyalty:  service.NewLoyaltyService(loyaltyRepo, logger),
		Orders: service.NewOrderService(service.OrderDependencies{
			Orders:   orderRepo,
			Products: productRepo,
			Cart:     cartRepo,
			Loyalty:  loyaltyRepo,
			Events:   events.NewLogPublisher(logger),
			Receipts: receipt.NewFileStore(receiptDir, logger),
		}, pricing, 3, logger),
	}
}
