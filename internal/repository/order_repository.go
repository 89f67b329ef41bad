package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"better-being/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `o.id, o.user_id, o.order_number, o.status, o.subtotal, o.tax, o.shipping, o.total,
	o.loyalty_points_earned, o.payment_method, o.shipping_address, o.billing_address,
	o.created_at, o.updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

// CreateOrder inserts a new order within the provided transaction and fills
// in the database timestamps.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	shipping, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}
	billing, err := json.Marshal(order.BillingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode billing address: %w", err)
	}

	query := `
		INSERT INTO orders (
			id, user_id, order_number, status, subtotal, tax, shipping, total,
			loyalty_points_earned, payment_method, shipping_address, billing_address
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		order.ID,
		order.UserID,
		order.OrderNumber,
		order.Status,
		order.Subtotal,
		order.Tax,
		order.Shipping,
		order.Total,
		order.LoyaltyPointsEarned,
		order.PaymentMethod,
		string(shipping),
		string(billing),
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, constraintOrderNumber) {
			r.logger.Warn().
				Str("order_number", order.OrderNumber).
				Msg("order number collision")
			return ErrOrderNumberTaken
		}
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price, size)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price, item.Size)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.getOrder(ctx, r.pool, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id)
}

// GetForUpdate retrieves and locks an order inside tx.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	return r.getOrder(ctx, tx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1 FOR UPDATE`, id)
}

// ListByUser returns the user's orders newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `,
		       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id)
		FROM orders o
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.order_number DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var itemCount int
		order, err := scanOrder(rows, &itemCount)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order.ItemCount = itemCount
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus sets the order status inside tx.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// FindByIdempotencyKey returns the order previously recorded for key.
func (r *orderRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM order_idempotency_keys k
		JOIN orders o ON o.id = k.order_id
		WHERE k.user_id = $1 AND k.idempotency_key = $2
	`

	rows, err := r.pool.Query(ctx, query, userID, key)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query idempotency key")
		return nil, fmt.Errorf("failed to query idempotency key: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query idempotency key: %w", err)
		}
		return nil, nil
	}

	order, err := scanOrder(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	rows.Close()

	if order.Items, err = r.loadItems(ctx, r.pool, order.ID); err != nil {
		return nil, err
	}

	return order, nil
}

// SaveIdempotencyKey records the order created for key inside tx.
func (r *orderRepository) SaveIdempotencyKey(ctx context.Context, tx pgx.Tx, userID int64, key string, orderID uuid.UUID) error {
	query := `
		INSERT INTO order_idempotency_keys (user_id, idempotency_key, order_id)
		VALUES ($1, $2, $3)
	`

	if _, err := tx.Exec(ctx, query, userID, key, orderID); err != nil {
		if isUniqueViolation(err, constraintIdempotencyKey) {
			r.logger.Warn().Int64("user_id", userID).Msg("idempotency key already claimed")
			return model.ErrDuplicateRequest
		}
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to save idempotency key")
		return fmt.Errorf("failed to save idempotency key: %w", err)
	}

	return nil
}

func (r *orderRepository) getOrder(ctx context.Context, q querier, query string, id uuid.UUID) (*model.Order, error) {
	order, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if order.Items, err = r.loadItems(ctx, q, id); err != nil {
		return nil, err
	}
	order.ItemCount = len(order.Items)

	return order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, q querier, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price, oi.size
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.product_id, COALESCE(oi.size, '')
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price, &item.Size)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// scanOrder reads the orderColumns projection followed by any extra columns.
func scanOrder(row pgx.Row, extra ...any) (*model.Order, error) {
	var (
		order             model.Order
		shipping, billing string
	)

	dest := []any{
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&order.Status,
		&order.Subtotal,
		&order.Tax,
		&order.Shipping,
		&order.Total,
		&order.LoyaltyPointsEarned,
		&order.PaymentMethod,
		&shipping,
		&billing,
		&order.CreatedAt,
		&order.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(shipping), &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to decode shipping address: %w", err)
	}
	if err := json.Unmarshal([]byte(billing), &order.BillingAddress); err != nil {
		return nil, fmt.Errorf("failed to decode billing address: %w", err)
	}

	return &order, nil
}
