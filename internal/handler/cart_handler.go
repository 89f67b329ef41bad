package handler

import (
	"net/http"

	"better-being/internal/model"
	"better-being/internal/service"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	base
	service service.CartService
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, validate *validatorv10.Validate, opts Options, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		base:    newBase(validate, opts, logger, "cart"),
		service: service,
	}
}

// List handles GET /api/cart requests.
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	items, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "Server error fetching cart")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Add handles POST /api/cart/add requests.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req model.AddToCartRequest
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.service.Add(r.Context(), userID, &req)
	if err != nil {
		h.writeServiceError(w, err, "Server error adding to cart")
		return
	}

	writeJSON(w, http.StatusCreated, model.CartItemResponse{Message: "Item added to cart", Item: item})
}

// Update handles PUT /api/cart/update/{itemId} requests.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	itemID, ok := h.pathUUID(w, r, "itemId", "cart item")
	if !ok {
		return
	}

	var req model.UpdateCartItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.UpdateQuantity(r.Context(), userID, itemID, req.Quantity); err != nil {
		h.writeServiceError(w, err, "Server error updating cart")
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Cart item updated"})
}

// Remove handles DELETE /api/cart/remove/{itemId} requests.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	itemID, ok := h.pathUUID(w, r, "itemId", "cart item")
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), userID, itemID); err != nil {
		h.writeServiceError(w, err, "Server error removing from cart")
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Item removed from cart"})
}

// Clear handles DELETE /api/cart/clear requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.service.Clear(r.Context(), userID); err != nil {
		h.writeServiceError(w, err, "Server error clearing cart")
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Cart cleared"})
}

// Summary handles GET /api/cart/summary requests.
func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "Server error fetching cart summary")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
