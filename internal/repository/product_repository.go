package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"better-being/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, price, category, stock_count, in_stock, created_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.StockCount, &p.InStock, &p.CreatedAt)
	return p, err
}

var productOrder = map[model.ProductSort]string{
	model.SortByName:      "name, id",
	model.SortByPriceLow:  "price ASC, name",
	model.SortByPriceHigh: "price DESC, name",
	model.SortByNewest:    "created_at DESC, id",
}

// productWhere renders the filter as a WHERE clause and its arguments.
func productWhere(filter model.ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("LOWER(category) = LOWER($%d)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR category ILIKE $%d)", len(args), len(args)))
	}
	if filter.InStockOnly {
		conds = append(conds, "in_stock AND stock_count > 0")
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of the catalogue.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	where, args := productWhere(filter)

	order, ok := productOrder[filter.Sort]
	if !ok {
		order = productOrder[model.SortByName]
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, productColumns, where, order, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).
			Str("category", filter.Category).
			Str("search", filter.Search).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Count returns the number of products matching the filter.
func (r *productRepository) Count(ctx context.Context, filter model.ProductFilter) (int, error) {
	where, args := productWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return total, nil
}

// Categories groups the catalogue by category. Products without a category
// are left out.
func (r *productRepository) Categories(ctx context.Context) ([]model.CategorySummary, error) {
	query := `
		SELECT category,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE in_stock AND stock_count > 0)
		FROM products
		WHERE category <> ''
		GROUP BY category
		ORDER BY category
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.CategorySummary{}
	for rows.Next() {
		var c model.CategorySummary
		if err := rows.Scan(&c.Name, &c.ProductCount, &c.InStockCount); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// LockByIDs reads the products with FOR UPDATE in id order so concurrent
// checkouts acquire row locks in the same sequence.
func (r *productRepository) LockByIDs(ctx context.Context, tx pgx.Tx, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock products")
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// DecrementStock subtracts quantity when enough stock remains.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (bool, error) {
	query := `
		UPDATE products
		SET stock_count = stock_count - $2
		WHERE id = $1 AND in_stock AND stock_count >= $2
	`

	tag, err := tx.Exec(ctx, query, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("failed to decrement stock")
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("stock decrement refused")
		return false, nil
	}

	return true, nil
}

// IncrementStock returns quantity units to stock.
func (r *productRepository) IncrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) error {
	query := `UPDATE products SET stock_count = stock_count + $2 WHERE id = $1`

	tag, err := tx.Exec(ctx, query, productID, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("failed to restore stock")
		return fmt.Errorf("failed to restore stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return &model.ProductNotFoundError{ProductID: productID}
	}

	return nil
}

func (r *productRepository) collect(rows pgx.Rows) ([]model.Product, error) {
	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
