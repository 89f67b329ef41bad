package router

import (
	"net/http"

	"better-being/internal/handler"
	"better-being/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Products *handler.ProductHandler
	Orders   *handler.OrderHandler
	Cart     *handler.CartHandler
	Loyalty  *handler.LoyaltyHandler
}

// Security holds the credentials checked by the route-level middleware and
// the origins allowed by CORS.
type Security struct {
	APIKey         string
	JWTSecret      string
	AllowedOrigins []string
}

// New creates a new HTTP router with all routes and middleware configured.
// Customer routes require a bearer token; admin routes require the API key.
func New(h Handlers, sec Security, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	user := middleware.BearerAuth(sec.JWTSecret, logger)
	admin := middleware.APIKeyAuth(sec.APIKey, logger)

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalogue
	mux.HandleFunc("GET /api/products", h.Products.List)
	mux.HandleFunc("GET /api/products/categories/all", h.Products.Categories)
	mux.HandleFunc("GET /api/products/{id}", h.Products.GetByID)

	// Orders
	mux.Handle("POST /api/orders/create-from-cart", user(http.HandlerFunc(h.Orders.CreateFromCart)))
	mux.Handle("POST /api/orders", user(http.HandlerFunc(h.Orders.Create)))
	mux.Handle("GET /api/orders/my-orders", user(http.HandlerFunc(h.Orders.ListMine)))
	mux.Handle("GET /api/orders/{orderId}", user(http.HandlerFunc(h.Orders.GetByID)))
	mux.Handle("PUT /api/orders/{orderId}/cancel", user(http.HandlerFunc(h.Orders.Cancel)))
	mux.Handle("PUT /api/orders/{orderId}/status", admin(http.HandlerFunc(h.Orders.UpdateStatus)))

	// Cart
	mux.Handle("GET /api/cart", user(http.HandlerFunc(h.Cart.List)))
	mux.Handle("GET /api/cart/summary", user(http.HandlerFunc(h.Cart.Summary)))
	mux.Handle("POST /api/cart/add", user(http.HandlerFunc(h.Cart.Add)))
	mux.Handle("PUT /api/cart/update/{itemId}", user(http.HandlerFunc(h.Cart.Update)))
	mux.Handle("DELETE /api/cart/remove/{itemId}", user(http.HandlerFunc(h.Cart.Remove)))
	mux.Handle("DELETE /api/cart/clear", user(http.HandlerFunc(h.Cart.Clear)))

	// Loyalty
	mux.Handle("GET /api/loyalty/points", user(http.HandlerFunc(h.Loyalty.Balance)))
	mux.Handle("GET /api/loyalty/transactions", user(http.HandlerFunc(h.Loyalty.Transactions)))
	mux.Handle("POST /api/loyalty/points/redeem", user(http.HandlerFunc(h.Loyalty.Redeem)))
	mux.Handle("POST /api/loyalty/points/add", admin(http.HandlerFunc(h.Loyalty.Add)))

	// Outermost first: RequestID -> Recovery -> Logging -> CORS
	var handler http.Handler = mux
	handler = middleware.CORS(sec.AllowedOrigins)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
