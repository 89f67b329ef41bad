package service

import (
	"context"
	"fmt"
	"strings"

	"better-being/internal/model"
	"better-being/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// List returns the user's cart lines.
func (s *cartService) List(ctx context.Context, userID int64) ([]model.CartItem, error) {
	items, err := s.cartRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return items, nil
}

// Add puts a product in the cart. A missing quantity means one unit.
func (s *cartService) Add(ctx context.Context, userID int64, req *model.AddToCartRequest) (*model.CartItem, error) {
	if req == nil || strings.TrimSpace(req.ProductID) == "" {
		return nil, model.ErrProductNotFound
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 || quantity > model.MaxLineQuantity {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", req.ProductID).Msg("product not found")
		return nil, &model.ProductNotFoundError{ProductID: req.ProductID}
	}

	if !product.InStock {
		s.logger.Warn().Str("product_id", req.ProductID).Msg("product is out of stock")
		return nil, model.ErrProductOutOfStock
	}

	item, err := s.cartRepo.Add(ctx, userID, product.ID, quantity, req.Size)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("user_id", userID).
		Str("product_id", product.ID).
		Int("quantity", item.Quantity).
		Msg("added to cart")

	return item, nil
}

// UpdateQuantity changes the quantity of one of the user's lines.
func (s *cartService) UpdateQuantity(ctx context.Context, userID int64, itemID uuid.UUID, quantity int) error {
	if quantity < 1 || quantity > model.MaxLineQuantity {
		return model.ErrInvalidQuantity
	}

	ok, err := s.cartRepo.UpdateQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if !ok {
		return model.ErrCartItemNotFound
	}

	return nil
}

// Remove deletes one of the user's lines.
func (s *cartService) Remove(ctx context.Context, userID int64, itemID uuid.UUID) error {
	ok, err := s.cartRepo.Remove(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if !ok {
		return model.ErrCartItemNotFound
	}

	return nil
}

// Clear empties the user's cart.
func (s *cartService) Clear(ctx context.Context, userID int64) error {
	removed, err := s.cartRepo.Clear(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.Debug().Int64("user_id", userID).Int64("removed", removed).Msg("cart cleared")
	return nil
}

// Summary aggregates the user's cart.
func (s *cartService) Summary(ctx context.Context, userID int64) (*model.CartSummary, error) {
	summary, err := s.cartRepo.Summary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart summary: %w", err)
	}

	return summary, nil
}
