package model

// MessageResponse acknowledges an operation that returns no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// OrderCreatedResponse is returned by both order creation endpoints.
type OrderCreatedResponse struct {
	Message             string `json:"message"`
	Order               *Order `json:"order"`
	LoyaltyPointsEarned int    `json:"loyaltyPointsEarned"`
}

// OrderResponse wraps an order returned by a status change.
type OrderResponse struct {
	Message string `json:"message"`
	Order   *Order `json:"order"`
}

// CartItemResponse wraps a cart line returned by the cart endpoints.
type CartItemResponse struct {
	Message string    `json:"message"`
	Item    *CartItem `json:"item,omitempty"`
}
