package repository

import (
	"context"
	"errors"
	"fmt"

	"better-being/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// loyaltyRepository implements the LoyaltyRepository interface using PostgreSQL.
type loyaltyRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLoyaltyRepository creates a new PostgreSQL-backed loyalty repository.
func NewLoyaltyRepository(pool *pgxpool.Pool, logger zerolog.Logger) LoyaltyRepository {
	return &loyaltyRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "loyalty").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *loyaltyRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

// GetBalance returns the user's current point balance.
func (r *loyaltyRepository) GetBalance(ctx context.Context, userID int64) (*model.LoyaltyBalance, error) {
	balance := model.LoyaltyBalance{UserID: userID}

	err := r.pool.QueryRow(ctx, `SELECT loyalty_points FROM users WHERE id = $1`, userID).Scan(&balance.Points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("user_id", userID).Msg("user not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query loyalty balance")
		return nil, fmt.Errorf("failed to query loyalty balance: %w", err)
	}

	return &balance, nil
}

// AdjustBalance adds delta to the balance unconditionally.
func (r *loyaltyRepository) AdjustBalance(ctx context.Context, tx pgx.Tx, userID int64, delta int) error {
	tag, err := tx.Exec(ctx, `UPDATE users SET loyalty_points = loyalty_points + $2 WHERE id = $1`, userID, delta)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("user_id", userID).
			Int("delta", delta).
			Msg("failed to adjust loyalty balance")
		return fmt.Errorf("failed to adjust loyalty balance: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}

	return nil
}

// DeductBalance subtracts points only when the balance covers them.
func (r *loyaltyRepository) DeductBalance(ctx context.Context, tx pgx.Tx, userID int64, points int) (bool, error) {
	query := `
		UPDATE users
		SET loyalty_points = loyalty_points - $2
		WHERE id = $1 AND loyalty_points >= $2
	`

	tag, err := tx.Exec(ctx, query, userID, points)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("user_id", userID).
			Int("points", points).
			Msg("failed to deduct loyalty points")
		return false, fmt.Errorf("failed to deduct loyalty points: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// InsertTransaction appends a ledger entry and fills in its creation time.
func (r *loyaltyRepository) InsertTransaction(ctx context.Context, tx pgx.Tx, entry *model.LoyaltyTransaction) error {
	query := `
		INSERT INTO loyalty_transactions (id, user_id, order_id, transaction_type, points, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := tx.QueryRow(ctx, query,
		entry.ID,
		entry.UserID,
		entry.OrderID,
		entry.Type,
		entry.Points,
		entry.Description,
	).Scan(&entry.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("user_id", entry.UserID).
			Str("type", string(entry.Type)).
			Int("points", entry.Points).
			Msg("failed to insert loyalty transaction")
		return fmt.Errorf("failed to insert loyalty transaction: %w", err)
	}

	return nil
}

// ListTransactions returns the user's ledger entries newest first.
func (r *loyaltyRepository) ListTransactions(ctx context.Context, userID int64, limit int) ([]model.LoyaltyTransaction, error) {
	query := `
		SELECT id, user_id, order_id, transaction_type, points, description, created_at
		FROM loyalty_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query loyalty transactions")
		return nil, fmt.Errorf("failed to query loyalty transactions: %w", err)
	}
	defer rows.Close()

	entries := []model.LoyaltyTransaction{}
	for rows.Next() {
		var e model.LoyaltyTransaction
		if err := rows.Scan(&e.ID, &e.UserID, &e.OrderID, &e.Type, &e.Points, &e.Description, &e.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan loyalty transaction row")
			return nil, fmt.Errorf("failed to scan loyalty transaction: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating loyalty transaction rows")
		return nil, fmt.Errorf("error iterating loyalty transactions: %w", err)
	}

	return entries, nil
}
