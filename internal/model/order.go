package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a customer order.
type Order struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	UserID              int64           `json:"userId" db:"user_id"`
	OrderNumber         string          `json:"orderNumber" db:"order_number"`
	Status              OrderStatus     `json:"status" db:"status"`
	Subtotal            decimal.Decimal `json:"subtotal" db:"subtotal"`
	Tax                 decimal.Decimal `json:"tax" db:"tax"`
	Shipping            decimal.Decimal `json:"shipping" db:"shipping"`
	Total               decimal.Decimal `json:"total" db:"total"`
	LoyaltyPointsEarned int             `json:"loyaltyPointsEarned" db:"loyalty_points_earned"`
	PaymentMethod       string          `json:"paymentMethod" db:"payment_method"`
	ShippingAddress     Address         `json:"shippingAddress" db:"shipping_address"`
	BillingAddress      Address         `json:"billingAddress" db:"billing_address"`
	ItemCount           int             `json:"itemCount,omitempty" db:"-"`
	Items               []OrderItem     `json:"items,omitempty" db:"-"`
	CreatedAt           time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order. Price is the unit price at purchase.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	ProductName string          `json:"productName,omitempty" db:"-"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Size        *string         `json:"size,omitempty" db:"size"`
}

// LineTotal returns quantity × unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Address is a postal address captured at checkout.
type Address struct {
	FirstName  string `json:"firstName" validate:"required,notblank"`
	LastName   string `json:"lastName" validate:"required,notblank"`
	Street     string `json:"address" validate:"required,notblank"`
	City       string `json:"city" validate:"required,notblank"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postalCode" validate:"required,notblank"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// CheckoutRequest is the payload for creating an order from the cart.
type CheckoutRequest struct {
	ShippingAddress *Address `json:"shippingAddress" validate:"required"`
	BillingAddress  *Address `json:"billingAddress,omitempty"`
	PaymentMethod   string   `json:"paymentMethod" validate:"required,notblank,max=50"`
}

// OrderRequest is the payload for creating an order from explicit items.
type OrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress *Address           `json:"shippingAddress" validate:"required"`
	BillingAddress  *Address           `json:"billingAddress,omitempty"`
	PaymentMethod   string             `json:"paymentMethod" validate:"required,notblank,max=50"`
}

// MaxLineQuantity caps the quantity of one order or cart line, after lines for
// the same product and size are merged.
const MaxLineQuantity = 1000

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID string  `json:"productId" validate:"required,notblank"`
	Quantity  int     `json:"quantity" validate:"required,min=1,max=1000"`
	Size      *string `json:"size,omitempty" validate:"omitempty,max=20"`
}

// UpdateStatusRequest is the admin payload for moving an order along its lifecycle.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}

// CheckoutResult is returned by the order creation operations. Replayed is set
// when an idempotency key matched an order created by an earlier request.
type CheckoutResult struct {
	Order               *Order `json:"order"`
	LoyaltyPointsEarned int    `json:"loyaltyPointsEarned"`
	Replayed            bool   `json:"-"`
}
