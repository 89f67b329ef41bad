package repository

import (
	"context"
	"errors"
	"fmt"

	"better-being/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const cartSelect = `
	SELECT c.id, c.user_id, c.product_id, p.name, p.price, p.stock_count, p.in_stock,
	       c.quantity, c.size, c.created_at
	FROM cart c
	JOIN products p ON p.id = c.product_id
`

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func scanCartItem(row pgx.Row) (model.CartItem, error) {
	var c model.CartItem
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.ProductID,
		&c.ProductName,
		&c.Price,
		&c.StockCount,
		&c.InStock,
		&c.Quantity,
		&c.Size,
		&c.CreatedAt,
	)
	return c, err
}

// List returns the user's cart lines, oldest first.
func (r *cartRepository) List(ctx context.Context, userID int64) ([]model.CartItem, error) {
	rows, err := r.pool.Query(ctx, cartSelect+` WHERE c.user_id = $1 ORDER BY c.created_at, c.id`, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// LockForCheckout reads the cart in product order and locks the cart lines
// together with their products until the transaction ends.
func (r *cartRepository) LockForCheckout(ctx context.Context, tx pgx.Tx, userID int64) ([]model.CartItem, error) {
	query := cartSelect + `
		WHERE c.user_id = $1
		ORDER BY c.product_id, COALESCE(c.size, '')
		FOR UPDATE OF c, p
	`

	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to lock cart for checkout")
		return nil, fmt.Errorf("failed to lock cart for checkout: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Add upserts a cart line, merging quantity into an existing line for the
// same product and size. A merge that would take the line past
// model.MaxLineQuantity leaves the line untouched and returns
// model.ErrInvalidQuantity.
func (r *cartRepository) Add(ctx context.Context, userID int64, productID string, quantity int, size *string) (*model.CartItem, error) {
	query := `
		WITH upserted AS (
			INSERT INTO cart (id, user_id, product_id, quantity, size)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, product_id, (COALESCE(size, '')))
			DO UPDATE SET quantity = cart.quantity + EXCLUDED.quantity, updated_at = NOW()
			WHERE cart.quantity::BIGINT + EXCLUDED.quantity <= $6
			RETURNING id, user_id, product_id, quantity, size, created_at
		)
		SELECT u.id, u.user_id, u.product_id, p.name, p.price, p.stock_count, p.in_stock,
		       u.quantity, u.size, u.created_at
		FROM upserted u
		JOIN products p ON p.id = u.product_id
	`

	item, err := scanCartItem(r.pool.QueryRow(ctx, query, uuid.New(), userID, productID, quantity, size, model.MaxLineQuantity))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isCheckViolation(err, constraintCartQuantity) {
			r.logger.Warn().
				Int64("user_id", userID).
				Str("product_id", productID).
				Int("quantity", quantity).
				Msg("cart line would exceed the quantity cap")
			return nil, model.ErrInvalidQuantity
		}
		if isForeignKeyViolation(err, constraintCartUser) {
			return nil, model.ErrUserNotFound
		}
		if isForeignKeyViolation(err, "") {
			return nil, &model.ProductNotFoundError{ProductID: productID}
		}
		r.logger.Error().Err(err).
			Int64("user_id", userID).
			Str("product_id", productID).
			Msg("failed to add cart item")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	r.logger.Debug().
		Int64("user_id", userID).
		Str("product_id", productID).
		Int("quantity", item.Quantity).
		Msg("cart item saved")

	return &item, nil
}

// UpdateQuantity sets the quantity of a line owned by userID.
func (r *cartRepository) UpdateQuantity(ctx context.Context, userID int64, itemID uuid.UUID, quantity int) (bool, error) {
	query := `UPDATE cart SET quantity = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, itemID, userID, quantity)
	if err != nil {
		if isCheckViolation(err, constraintCartQuantity) {
			return false, model.ErrInvalidQuantity
		}
		r.logger.Error().Err(err).Str("cart_item_id", itemID.String()).Msg("failed to update cart item")
		return false, fmt.Errorf("failed to update cart item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Remove deletes a line owned by userID.
func (r *cartRepository) Remove(ctx context.Context, userID int64, itemID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", itemID.String()).Msg("failed to remove cart item")
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Clear deletes the user's cart.
func (r *cartRepository) Clear(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to clear cart")
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ClearTx deletes the user's cart inside tx.
func (r *cartRepository) ClearTx(ctx context.Context, tx pgx.Tx, userID int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart WHERE user_id = $1`, userID); err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Summary aggregates the user's cart at current product prices.
func (r *cartRepository) Summary(ctx context.Context, userID int64) (*model.CartSummary, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(c.quantity), 0), COALESCE(SUM(c.quantity * p.price), 0)
		FROM cart c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
	`

	var summary model.CartSummary
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, query, userID).Scan(&summary.TotalItems, &summary.TotalQuantity, &total)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to summarise cart")
		return nil, fmt.Errorf("failed to summarise cart: %w", err)
	}
	summary.TotalPrice = total.Round(2)

	return &summary, nil
}

func (r *cartRepository) collect(rows pgx.Rows) ([]model.CartItem, error) {
	items := []model.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}
