package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeValidation          = "VALIDATION_FAILED"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeProductOutOfStock   = "PRODUCT_OUT_OF_STOCK"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeInvalidSort         = "INVALID_SORT"
	ErrCodeCartItemNotFound    = "CART_ITEM_NOT_FOUND"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeOrderNotCancellable = "ORDER_NOT_CANCELLABLE"
	ErrCodeInvalidStatus       = "INVALID_STATUS"
	ErrCodeInvalidTransition   = "INVALID_STATUS_TRANSITION"
	ErrCodeInvalidPoints       = "INVALID_POINTS"
	ErrCodeInsufficientPoints  = "INSUFFICIENT_POINTS"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeDuplicateRequest    = "DUPLICATE_REQUEST"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidInput        = NewDomainError(ErrCodeMissingField, "Shipping address and payment method are required")
	ErrNoItems             = NewDomainError(ErrCodeMissingField, "Order must contain at least one item")
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrProductOutOfStock   = NewDomainError(ErrCodeProductOutOfStock, "Product is out of stock")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be between 1 and 1000")
	ErrInvalidSort         = NewDomainError(ErrCodeInvalidSort, "Unknown sort order")
	ErrCartItemNotFound    = NewDomainError(ErrCodeCartItemNotFound, "Cart item not found")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrOrderNotCancellable = NewDomainError(ErrCodeOrderNotCancellable, "Order cannot be cancelled")
	ErrInvalidStatus       = NewDomainError(ErrCodeInvalidStatus, "Invalid status")
	ErrInvalidTransition   = NewDomainError(ErrCodeInvalidTransition, "Status transition is not allowed")
	ErrInvalidPoints       = NewDomainError(ErrCodeInvalidPoints, "Points must be greater than zero")
	ErrInsufficientPoints  = NewDomainError(ErrCodeInsufficientPoints, "Insufficient loyalty points")
	ErrUserNotFound        = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrDuplicateRequest    = NewDomainError(ErrCodeDuplicateRequest, "A request with this idempotency key is already being processed")
	ErrUnauthorised        = NewDomainError(ErrCodeUnauthorised, "Authentication required")
)

// InsufficientStockError reports the product whose stock cannot cover a line.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s", e.ProductName)
}

// Is lets errors.Is match any InsufficientStockError against a zero-value target.
func (e *InsufficientStockError) Is(target error) bool {
	_, ok := target.(*InsufficientStockError)
	return ok
}

// ProductNotFoundError names a product referenced by an order line that does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product not found: %s", e.ProductID)
}

// Unwrap makes a ProductNotFoundError match ErrProductNotFound.
func (e *ProductNotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// InvalidTransitionError describes a rejected status change.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("Cannot change order status from %s to %s", e.From, e.To)
}

// Unwrap makes an InvalidTransitionError match ErrInvalidTransition.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
