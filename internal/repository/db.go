package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgreSQL error codes the repositories translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Constraint names from schema.sql.
const (
	constraintOrderNumber    = "orders_order_number_key"
	constraintIdempotencyKey = "order_idempotency_keys_pkey"
	constraintCartUser       = "cart_user_id_fkey"
	constraintCartQuantity   = "cart_quantity_range"
)

// querier is the read surface shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrOrderNumberTaken is returned by CreateOrder when the generated order
// number collides with an existing order. The transaction is aborted at that
// point; callers that want to retry must have inserted inside a savepoint.
var ErrOrderNumberTaken = errors.New("order number already exists")

// beginTx starts a transaction on the pool and logs failures with the caller's logger.
func beginTx(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) (pgx.Tx, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// pgErrorCode returns the SQLSTATE and constraint of a PostgreSQL error, or
// empty strings for any other error.
func pgErrorCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

func isUniqueViolation(err error, constraint string) bool {
	code, name := pgErrorCode(err)
	return code == pgUniqueViolation && (constraint == "" || name == constraint)
}

func isForeignKeyViolation(err error, constraint string) bool {
	code, name := pgErrorCode(err)
	return code == pgForeignKeyViolation && (constraint == "" || name == constraint)
}

func isCheckViolation(err error, constraint string) bool {
	code, name := pgErrorCode(err)
	return code == pgCheckViolation && (constraint == "" || name == constraint)
}
