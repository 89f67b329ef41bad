package service

import (
	"context"
	"fmt"
	"strings"

	"better-being/internal/model"
	"better-being/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// normaliseFilter clamps paging and trims the free-text fields.
func normaliseFilter(filter model.ProductFilter) (model.ProductFilter, error) {
	if !filter.Sort.Valid() {
		return filter, model.ErrInvalidSort
	}
	if filter.Sort == "" {
		filter.Sort = model.SortByName
	}

	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)

	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultPageSize
	case filter.Limit > maxPageSize:
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return filter, nil
}

// Browse counts the matching products and then reads the requested page.
// An empty match set skips the page query.
func (s *productService) Browse(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	filter, err := normaliseFilter(filter)
	if err != nil {
		s.logger.Warn().Str("sort", string(filter.Sort)).Msg("rejected catalogue sort")
		return nil, err
	}

	page := &model.ProductPage{
		Products: []model.Product{},
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}

	page.Total, err = s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if page.Total == 0 || filter.Offset >= page.Total {
		return page, nil
	}

	page.Products, err = s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Str("category", filter.Category).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(page.Products)).
		Int("total", page.Total).
		Str("sort", string(filter.Sort)).
		Msg("browsed catalogue")

	return page, nil
}

// Categories lists the catalogue categories.
func (s *productService) Categories(ctx context.Context) ([]model.CategorySummary, error) {
	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, &model.ProductNotFoundError{ProductID: id}
	}

	return product, nil
}

