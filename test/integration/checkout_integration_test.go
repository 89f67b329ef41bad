package integration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"better-being/internal/model"
	"better-being/internal/receipt"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutRequest() *model.CheckoutRequest {
	return &model.CheckoutRequest{
		ShippingAddress: &model.Address{
			FirstName:  "Thandi",
			LastName:   "Mokoena",
			Street:     "12 Long Street",
			City:       "Cape Town",
			PostalCode: "8001",
		},
		PaymentMethod: "card",
	}
}

func addToCart(t *testing.T, svc Services, userID int64, productID string, quantity int) {
	t.Helper()

	_, err := svc.Cart.Add(context.Background(), userID, &model.AddToCartRequest{ProductID: productID, Quantity: quantity})
	require.NoError(t, err)
}

func TestCheckout_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	pool := testDB.Pool
	ctx := context.Background()

	t.Run("cart checkout commits order, stock, points and clears the cart", func(t *testing.T) {
		CleanupDB(t, pool)
		SeedProducts(t, pool, Product{ID: "P001", Name: "Ashwagandha Capsules", Price: "100.00", Stock: 5})
		userID := SeedUser(t, pool, "thandi@example.com")

		receiptDir := t.TempDir()
		svc := NewServices(pool, receiptDir)
		addToCart(t, svc, userID, "P001", 2)

		result, err := svc.Orders.CreateOrderFromCart(ctx, userID, checkoutRequest(), "")
		require.NoError(t, err)
		require.NotNil(t, result.Order)

		order := result.Order
		assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(200)))
		assert.True(t, order.Tax.Equal(decimal.NewFromInt(30)))
		assert.True(t, order.Shipping.Equal(decimal.NewFromInt(50)))
		assert.True(t, order.Total.Equal(decimal.NewFromInt(280)))
		assert.Equal(t, 280, result.LoyaltyPointsEarned)
		assert.Equal(t, model.StatusPending, order.Status)
		assert.Regexp(t, `^ORD-\d+-[0-9A-F]{6}$`, order.OrderNumber)

		assert.Equal(t, 3, StockOf(t, pool, "P001"))
		assert.Equal(t, 280, PointsOf(t, pool, userID))
		assert.Zero(t, Count(t, pool, `SELECT COUNT(*) FROM cart WHERE user_id = $1`, userID))
		assert.Equal(t, 1, Count(t, pool, `SELECT COUNT(*) FROM loyalty_transactions WHERE user_id = $1 AND transaction_type = 'earned'`, userID))

		saved, err := svc.Orders.GetOrder(ctx, order.ID, userID)
		require.NoError(t, err)
		require.Len(t, saved.Items, 1)
		assert.True(t, saved.Items[0].Price.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, "Cape Town", saved.ShippingAddress.City)
		assert.Equal(t, "Cape Town", saved.BillingAddress.City)

		f, err := os.Open(filepath.Join(receiptDir, receipt.Key(order.OrderNumber)))
		require.NoError(t, err)
		defer f.Close()
		r, err := receipt.Decode(f)
		require.NoError(t, err)
		assert.Equal(t, order.OrderNumber, r.OrderNumber)
	})

	t.Run("insufficient stock rolls everything back", func(t *testing.T) {
		CleanupDB(t, pool)
		SeedProducts(t, pool,
			Product{ID: "P001", Name: "Ashwagandha Capsules", Price: "100.00", Stock: 5},
			Product{ID: "P002", Name: "Magnesium Glycinate", Price: "249.99", Stock: 3},
		)
		userID := SeedUser(t, pool, "sipho@example.com")
		svc := NewServices(pool, t.TempDir())

		addToCart(t, svc, userID, "P001", 1)
		addToCart(t, svc, userID, "P002", 2)
		_, err := pool.Exec(ctx, `UPDATE products SET stock_count = 1 WHERE id = 'P002'`)
		require.NoError(t, err)

		// The same cart fails the same way every time and leaves nothing behind.
		var first model.InsufficientStockError
		for attempt := 1; attempt <= 2; attempt++ {
			_, err = svc.Orders.CreateOrderFromCart(ctx, userID, checkoutRequest(), "")
			var stockErr *model.InsufficientStockError
			require.ErrorAs(t, err, &stockErr, "attempt %d", attempt)
			assert.Equal(t, "Magnesium Glycinate", stockErr.ProductName)
			assert.Equal(t, 2, stockErr.Requested)
			assert.Equal(t, 1, stockErr.Available)
			if attempt == 1 {
				first = *stockErr
			} else {
				assert.Equal(t, first, *stockErr)
			}

			assert.Equal(t, 5, StockOf(t, pool, "P001"))
			assert.Equal(t, 1, StockOf(t, pool, "P002"))
			assert.Zero(t, PointsOf(t, pool, userID))
			assert.Zero(t, Count(t, pool, `SELECT COUNT(*) FROM orders`))
			assert.Zero(t, Count(t, pool, `SELECT COUNT(*) FROM order_items`))
			assert.Zero(t, Count(t, pool, `SELECT COUNT(*) FROM loyalty_transactions`))
			assert.Equal(t, 2, Count(t, pool, `SELECT COUNT(*) FROM cart WHERE user_id = $1`, userID))
			assert.Equal(t, 3, Count(t, pool, `SELECT COALESCE(SUM(quantity), 0) FROM cart WHERE user_id = $1`, userID))
		}
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		CleanupDB(t, pool)
		userID := SeedUser(t, pool, "empty@example.com")
		svc := NewServices(pool, t.TempDir())

		_, err := svc.Orders.CreateOrderFromCart(ctx, userID, checkoutRequest(), "")
		assert.ErrorIs(t, err, model.ErrEmptyCart)
		assert.Zero(t, Count(t, pool, `SELECT COUNT(*) FROM orders`))
	})

	t.Run("idempotency key replays the first order and survives a failed attempt", func(t *testing.T) {
		CleanupDB(t, pool)
		SeedProducts(t, pool, Product{ID: "P001", Name: "Ashwagandha Capsules", Price: "100.00", Stock: 1})
		userID := SeedUser(t, pool, "lerato@example.com")
		svc := NewServices(pool, t.TempDir())

		addToCart(t, svc, userID, "P001", 1)
		_, err := pool.Exec(ctx, `UPDATE products SET stock_count = 0 WHERE id = 'P001'`)
		require.NoError(t, err)

		_, err = svc.Orders.CreateOrderFromCart(ctx, userID, checkoutRequest(), "checkout-1")
		require.Error(t, err)
		assert.Zero(t, Count(t, pool, `SELECT COUNT(*) FROM order_idempotency_keys`))

		_, err = pool.Exec(ctx, `UPDATE products SET stock_count = 1 WHERE id = 'P001'`)
		require.NoError(t, err)

		first, err := svc.Orders.CreateOrderFromCart(ctx, userID, checkoutRequest(), "checkout-1")
		require.NoError(t, err)
		assert.False(t, first.Replayed)

		second, err := svc.Orders.CreateOrderFromCart(ctx, userID, checkoutRequest(), "checkout-1")
		require.NoError(t, err)
		assert.True(t, second.Replayed)
		assert.Equal(t, first.Order.ID, second.Order.ID)

		assert.Equal(t, 1, Count(t, pool, `SELECT COUNT(*) FROM orders`))
		assert.Zero(t, StockOf(t, pool, "P001"))
	})

	t.Run("cancel restores stock and reverses points", func(t *testing.T) {
		CleanupDB(t, pool)
		SeedProducts(t, pool, Product{ID: "P001", Name: "Ashwagandha Capsules", Price: "100.00", Stock: 5})
		userID := SeedUser(t, pool, "naledi@example.com")
		svc := NewServices(pool, t.TempDir())

		addToCart(t, svc, userID, "P001", 2)
		result, err := svc.Orders.CreateOrderFromCart(ctx, userID, checkoutRequest(), "")
		require.NoError(t, err)

		cancelled, err := svc.Orders.CancelOrder(ctx, result.Order.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, cancelled.Status)

		assert.Equal(t, 5, StockOf(t, pool, "P001"))
		assert.Zero(t, PointsOf(t, pool, userID))
		assert.Equal(t, 1, Count(t, pool, `SELECT COUNT(*) FROM loyalty_transactions WHERE user_id = $1 AND points = -280`, userID))

		_, err = svc.Orders.CancelOrder(ctx, result.Order.ID, userID)
		assert.ErrorIs(t, err, model.ErrOrderNotCancellable)
		assert.Equal(t, 5, StockOf(t, pool, "P001"))

		other := SeedUser(t, pool, "other@example.com")
		_, err = svc.Orders.GetOrder(ctx, result.Order.ID, other)
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})

	t.Run("status lifecycle follows allowed transitions", func(t *testing.T) {
		CleanupDB(t, pool)
		SeedProducts(t, pool, Product{ID: "P001", Name: "Ashwagandha Capsules", Price: "100.00", Stock: 5})
		userID := SeedUser(t, pool, "zanele@example.com")
		svc := NewServices(pool, t.TempDir())

		addToCart(t, svc, userID, "P001", 1)
		result, err := svc.Orders.CreateOrderFromCart(ctx, userID, checkoutRequest(), "")
		require.NoError(t, err)

		_, err = svc.Orders.UpdateOrderStatus(ctx, result.Order.ID, model.StatusShipped)
		assert.ErrorIs(t, err, model.ErrInvalidTransition)

		for _, status := range []model.OrderStatus{model.StatusConfirmed, model.StatusProcessing, model.StatusShipped, model.StatusDelivered} {
			order, err := svc.Orders.UpdateOrderStatus(ctx, result.Order.ID, status)
			require.NoError(t, err)
			assert.Equal(t, status, order.Status)
		}

		_, err = svc.Orders.CancelOrder(ctx, result.Order.ID, userID)
		assert.ErrorIs(t, err, model.ErrOrderNotCancellable)
	})

	t.Run("free shipping starts above the threshold", func(t *testing.T) {
		CleanupDB(t, pool)
		SeedProducts(t, pool,
			Product{ID: "P100", Name: "Wellness Bundle", Price: "100.00", Stock: 10},
			Product{ID: "P500", Name: "Premium Bundle", Price: "500.01", Stock: 10},
		)
		userID := SeedUser(t, pool, "bongani@example.com")
		svc := NewServices(pool, t.TempDir())

		atThreshold, err := svc.Orders.CreateOrder(ctx, userID, &model.OrderRequest{
			Items:           []model.OrderItemRequest{{ProductID: "P100", Quantity: 5}},
			ShippingAddress: checkoutRequest().ShippingAddress,
			PaymentMethod:   "card",
		}, "")
		require.NoError(t, err)
		assert.True(t, atThreshold.Order.Shipping.Equal(decimal.NewFromInt(50)))
		assert.True(t, atThreshold.Order.Total.Equal(decimal.NewFromInt(625)))

		above, err := svc.Orders.CreateOrder(ctx, userID, &model.OrderRequest{
			Items:           []model.OrderItemRequest{{ProductID: "P500", Quantity: 1}},
			ShippingAddress: checkoutRequest().ShippingAddress,
			PaymentMethod:   "card",
		}, "")
		require.NoError(t, err)
		assert.True(t, above.Order.Shipping.IsZero())
		assert.True(t, above.Order.Tax.Equal(decimal.RequireFromString("75.00")))
		assert.True(t, above.Order.Total.Equal(decimal.RequireFromString("575.01")))
		assert.Equal(t, 575, above.LoyaltyPointsEarned)

		assert.Equal(t, 5, StockOf(t, pool, "P100"))
		assert.Equal(t, 9, StockOf(t, pool, "P500"))
	})

	t.Run("concurrent checkouts never oversell the last unit", func(t *testing.T) {
		CleanupDB(t, pool)
		SeedProducts(t, pool, Product{ID: "P001", Name: "Ashwagandha Capsules", Price: "100.00", Stock: 1})
		svc := NewServices(pool, t.TempDir())

		const buyers = 5
		users := make([]int64, buyers)
		for i := range users {
			users[i] = SeedUser(t, pool, "buyer"+string(rune('a'+i))+"@example.com")
			addToCart(t, svc, users[i], "P001", 1)
		}

		var wg sync.WaitGroup
		errs := make([]error, buyers)
		for i, userID := range users {
			wg.Add(1)
			go func(i int, userID int64) {
				defer wg.Done()
				_, errs[i] = svc.Orders.CreateOrderFromCart(ctx, userID, checkoutRequest(), "")
			}(i, userID)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			var stockErr *model.InsufficientStockError
			assert.True(t, errors.As(err, &stockErr), "unexpected error: %v", err)
		}

		assert.Equal(t, 1, succeeded)
		assert.Zero(t, StockOf(t, pool, "P001"))
		assert.Equal(t, 1, Count(t, pool, `SELECT COUNT(*) FROM orders`))
	})
}
