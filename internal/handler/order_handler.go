package handler

import (
	"errors"
	"net/http"
	"strings"

	"better-being/internal/model"
	"better-being/internal/service"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// IdempotencyKeyHeader lets clients retry order creation safely.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	base
	service service.OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, validate *validatorv10.Validate, opts Options, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		base:    newBase(validate, opts, logger, "order"),
		service: service,
	}
}

// CreateFromCart handles POST /api/orders/create-from-cart requests.
func (h *OrderHandler) CreateFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	key, ok := h.idempotencyKey(w, r)
	if !ok {
		return
	}

	var req model.CheckoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.CreateOrderFromCart(r.Context(), userID, &req, key)
	if err != nil {
		h.writeServiceError(w, err, "Server error creating order")
		return
	}

	h.writeCreated(w, result)
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	key, ok := h.idempotencyKey(w, r)
	if !ok {
		return
	}

	var req model.OrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.CreateOrder(r.Context(), userID, &req, key)
	if err != nil {
		// A line naming an unknown product is a bad request, not a missing resource.
		if errors.Is(err, model.ErrProductNotFound) {
			writeError(w, http.StatusBadRequest, model.ErrCodeProductNotFound, err.Error(), h.logger)
			return
		}
		h.writeServiceError(w, err, "Server error creating order")
		return
	}

	h.writeCreated(w, result)
}

// ListMine handles GET /api/orders/my-orders requests.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListUserOrders(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "Server error fetching orders")
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{orderId} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	orderID, ok := h.pathUUID(w, r, "orderId", "order")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID, userID)
	if err != nil {
		h.writeServiceError(w, err, "Server error fetching order details")
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PUT /api/orders/{orderId}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.pathUUID(w, r, "orderId", "order")
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), orderID, req.Status)
	if err != nil {
		h.writeServiceError(w, err, "Server error updating order status")
		return
	}

	writeJSON(w, http.StatusOK, model.OrderResponse{
		Message: "Order status updated successfully",
		Order:   order,
	})
}

// Cancel handles PUT /api/orders/{orderId}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	orderID, ok := h.pathUUID(w, r, "orderId", "order")
	if !ok {
		return
	}

	if _, err := h.service.CancelOrder(r.Context(), orderID, userID); err != nil {
		h.writeServiceError(w, err, "Server error cancelling order")
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Order cancelled successfully"})
}

func (h *OrderHandler) idempotencyKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLength {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "Idempotency-Key must be at most 255 characters", h.logger)
		return "", false
	}
	return key, true
}

// writeCreated answers 201 for a new order and 200 when an idempotency key
// replayed an earlier one.
func (h *OrderHandler) writeCreated(w http.ResponseWriter, result *model.CheckoutResult) {
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	writeJSON(w, status, model.OrderCreatedResponse{
		Message:             "Order created successfully",
		Order:               result.Order,
		LoyaltyPointsEarned: result.LoyaltyPointsEarned,
	})
}
