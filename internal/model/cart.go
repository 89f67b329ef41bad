package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a cart line joined with the product fields checkout needs.
type CartItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      int64           `json:"-" db:"user_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	StockCount  int             `json:"stockCount" db:"stock_count"`
	InStock     bool            `json:"inStock" db:"in_stock"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Size        *string         `json:"size,omitempty" db:"size"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// LineTotal returns quantity × current product price.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CartSummary aggregates a user's cart.
type CartSummary struct {
	TotalItems    int             `json:"totalItems"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

// AddToCartRequest is the payload for adding a product to the cart.
// Quantity defaults to 1 when omitted.
type AddToCartRequest struct {
	ProductID string  `json:"productId" validate:"required,notblank"`
	Quantity  int     `json:"quantity" validate:"omitempty,min=1,max=1000"`
	Size      *string `json:"size,omitempty" validate:"omitempty,max=20"`
}

// UpdateCartItemRequest is the payload for changing a line quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=1000"`
}
