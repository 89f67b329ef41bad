package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"better-being/internal/model"
	"better-being/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	base
	service service.ProductService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, opts Options, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		base:    newBase(nil, opts, logger, "product"),
		service: service,
	}
}

// queryInt reads an optional integer query parameter.
func queryInt(q url.Values, key string, def int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// List handles GET /api/products?category=&search=&inStock=&sort=&limit=&offset=.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := model.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     model.ProductSort(q.Get("sort")),
	}

	var err error
	if filter.Limit, err = queryInt(q, "limit", 0); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid limit parameter", h.logger)
		return
	}
	if filter.Offset, err = queryInt(q, "offset", 0); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid offset parameter", h.logger)
		return
	}
	if raw := q.Get("inStock"); raw != "" {
		if filter.InStockOnly, err = strconv.ParseBool(raw); err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid inStock parameter", h.logger)
			return
		}
	}

	page, err := h.service.Browse(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err, "Server error fetching products")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Categories handles GET /api/products/categories/all.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Failed to fetch categories")
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err, "Server error fetching product")
		return
	}

	writeJSON(w, http.StatusOK, product)
}
