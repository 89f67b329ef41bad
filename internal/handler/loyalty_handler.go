package handler

import (
	"net/http"

	"better-being/internal/model"
	"better-being/internal/service"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// LoyaltyHandler handles loyalty point HTTP requests.
type LoyaltyHandler struct {
	base
	service service.LoyaltyService
}

// NewLoyaltyHandler creates a new loyalty handler.
func NewLoyaltyHandler(service service.LoyaltyService, validate *validatorv10.Validate, opts Options, logger zerolog.Logger) *LoyaltyHandler {
	return &LoyaltyHandler{
		base:    newBase(validate, opts, logger, "loyalty"),
		service: service,
	}
}

// Balance handles GET /api/loyalty/points requests.
func (h *LoyaltyHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "Server error fetching loyalty points")
		return
	}

	writeJSON(w, http.StatusOK, balance)
}

// Transactions handles GET /api/loyalty/transactions requests.
func (h *LoyaltyHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	entries, err := h.service.ListTransactions(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err, "Server error fetching loyalty transactions")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// Redeem handles POST /api/loyalty/points/redeem requests.
func (h *LoyaltyHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req model.RedeemPointsRequest
	if !h.decode(w, r, &req) {
		return
	}

	entry, err := h.service.RedeemPoints(r.Context(), userID, req.Points, req.Description)
	if err != nil {
		h.writeServiceError(w, err, "Server error redeeming points")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// Add handles POST /api/loyalty/points/add requests. It is an admin route;
// the target user comes from the body.
func (h *LoyaltyHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req model.AddPointsRequest
	if !h.decode(w, r, &req) {
		return
	}

	entry, err := h.service.AddPoints(r.Context(), req.UserID, req.Points, req.Description)
	if err != nil {
		h.writeServiceError(w, err, "Server error adding points")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}
