package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"better-being/internal/events"
	"better-being/internal/model"
	"better-being/internal/receipt"
	"better-being/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderDependencies groups the collaborators of the order service.
type OrderDependencies struct {
	Orders   repository.OrderRepository
	Products repository.ProductRepository
	Cart     repository.CartRepository
	Loyalty  repository.LoyaltyRepository
	Events   events.Publisher
	Receipts receipt.Store
}

// orderService implements OrderService.
type orderService struct {
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	cartRepo       repository.CartRepository
	loyaltyRepo    repository.LoyaltyRepository
	publisher      events.Publisher
	receipts       receipt.Store
	pricing        Pricing
	newNumber      OrderNumberFunc
	numberAttempts int
	sideEffectTTL  time.Duration
	logger         zerolog.Logger
}

// postCommitTimeout bounds the event publish and receipt upload together.
const postCommitTimeout = 5 * time.Second

// NewOrderService creates a new order service. numberAttempts bounds how many
// order numbers are tried before giving up on a collision.
func NewOrderService(deps OrderDependencies, pricing Pricing, numberAttempts int, logger zerolog.Logger) OrderService {
	if numberAttempts < 1 {
		numberAttempts = 1
	}

	return &orderService{
		orderRepo:      deps.Orders,
		productRepo:    deps.Products,
		cartRepo:       deps.Cart,
		loyaltyRepo:    deps.Loyalty,
		publisher:      deps.Events,
		receipts:       deps.Receipts,
		pricing:        pricing,
		newNumber:      NewOrderNumber,
		numberAttempts: numberAttempts,
		sideEffectTTL:  postCommitTimeout,
		logger:         logger.With().Str("service", "order").Logger(),
	}
}

// orderLine is a priced line about to become an order item.
type orderLine struct {
	productID   string
	productName string
	price       decimal.Decimal
	quantity    int
	size        *string
}

// productDemand is the total quantity requested for one product.
type productDemand struct {
	productID   string
	productName string
	quantity    int
}

// checkoutInput is the validated shared part of both creation requests.
type checkoutInput struct {
	userID         int64
	shipping       model.Address
	billing        model.Address
	paymentMethod  string
	idempotencyKey string
}

// CreateOrderFromCart converts the user's cart into an order. The cart lines
// and their products stay locked from the stock check until commit.
func (s *orderService) CreateOrderFromCart(ctx context.Context, userID int64, req *model.CheckoutRequest, idempotencyKey string) (*model.CheckoutResult, error) {
	if req == nil {
		return nil, model.ErrInvalidInput
	}

	in, err := s.validateCheckout(userID, req.ShippingAddress, req.BillingAddress, req.PaymentMethod, idempotencyKey)
	if err != nil {
		return nil, err
	}

	if result, err := s.replay(ctx, in); err != nil || result != nil {
		return result, err
	}

	order, err := s.checkoutCart(ctx, in)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int64("user_id", userID).
		Str("total", order.Total.StringFixed(2)).
		Int("item_count", order.ItemCount).
		Msg("order created from cart")

	s.afterCommit(ctx, events.OrderCreated, order, true)

	return &model.CheckoutResult{Order: order, LoyaltyPointsEarned: order.LoyaltyPointsEarned}, nil
}

func (s *orderService) checkoutCart(ctx context.Context, in checkoutInput) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	cart, err := s.cartRepo.LockForCheckout(ctx, tx, in.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if len(cart) == 0 {
		s.logger.Warn().Int64("user_id", in.userID).Msg("checkout with empty cart")
		err = model.ErrEmptyCart
		return nil, err
	}

	lines := make([]orderLine, len(cart))
	stock := make(map[string]model.Product, len(cart))
	for i, item := range cart {
		lines[i] = orderLine{
			productID:   item.ProductID,
			productName: item.ProductName,
			price:       item.Price,
			quantity:    item.Quantity,
			size:        item.Size,
		}
		stock[item.ProductID] = model.Product{
			ID:         item.ProductID,
			Name:       item.ProductName,
			StockCount: item.StockCount,
			InStock:    item.InStock,
		}
	}

	if err = s.checkStock(lines, stock); err != nil {
		return nil, err
	}

	order, err = s.placeOrder(ctx, tx, in, lines)
	if err != nil {
		return nil, err
	}

	if err = s.cartRepo.ClearTx(ctx, tx, in.userID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

// CreateOrder creates an order from explicit items without touching the cart.
func (s *orderService) CreateOrder(ctx context.Context, userID int64, req *model.OrderRequest, idempotencyKey string) (*model.CheckoutResult, error) {
	if req == nil {
		return nil, model.ErrInvalidInput
	}

	if err := s.validateItems(req.Items); err != nil {
		return nil, err
	}

	in, err := s.validateCheckout(userID, req.ShippingAddress, req.BillingAddress, req.PaymentMethod, idempotencyKey)
	if err != nil {
		return nil, err
	}

	if result, err := s.replay(ctx, in); err != nil || result != nil {
		return result, err
	}

	items, err := mergeItems(req.Items)
	if err != nil {
		s.logger.Warn().Int64("user_id", userID).Msg("merged line quantity out of range")
		return nil, err
	}

	order, err := s.orderItems(ctx, in, items)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int64("user_id", userID).
		Str("total", order.Total.StringFixed(2)).
		Int("item_count", order.ItemCount).
		Msg("order created")

	s.afterCommit(ctx, events.OrderCreated, order, true)

	return &model.CheckoutResult{Order: order, LoyaltyPointsEarned: order.LoyaltyPointsEarned}, nil
}

func (s *orderService) orderItems(ctx context.Context, in checkoutInput, items []model.OrderItemRequest) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.productRepo.LockByIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	stock := make(map[string]model.Product, len(products))
	for _, p := range products {
		stock[p.ID] = p
	}

	lines := make([]orderLine, 0, len(items))
	for _, item := range items {
		p, ok := stock[item.ProductID]
		if !ok {
			s.logger.Warn().Str("product_id", item.ProductID).Msg("order references unknown product")
			err = &model.ProductNotFoundError{ProductID: item.ProductID}
			return nil, err
		}
		lines = append(lines, orderLine{
			productID:   p.ID,
			productName: p.Name,
			price:       p.Price,
			quantity:    item.Quantity,
			size:        item.Size,
		})
	}

	if err = s.checkStock(lines, stock); err != nil {
		return nil, err
	}

	order, err = s.placeOrder(ctx, tx, in, lines)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}

// placeOrder writes the order, its items, the stock decrements, the loyalty
// credit and the idempotency key inside tx.
func (s *orderService) placeOrder(ctx context.Context, tx pgx.Tx, in checkoutInput, lines []orderLine) (*model.Order, error) {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.price.Mul(decimal.NewFromInt(int64(l.quantity))))
	}
	totals := s.pricing.Calculate(subtotal)

	order := &model.Order{
		ID:                  uuid.New(),
		UserID:              in.userID,
		Status:              model.StatusPending,
		Subtotal:            totals.Subtotal,
		Tax:                 totals.Tax,
		Shipping:            totals.Shipping,
		Total:               totals.Total,
		LoyaltyPointsEarned: totals.LoyaltyPoints,
		PaymentMethod:       in.paymentMethod,
		ShippingAddress:     in.shipping,
		BillingAddress:      in.billing,
	}

	if err := s.insertOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   l.productID,
			ProductName: l.productName,
			Quantity:    l.quantity,
			Price:       l.price,
			Size:        l.size,
		}
	}

	if err := s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	demand, err := demandByProduct(lines)
	if err != nil {
		return nil, err
	}

	for _, d := range demand {
		ok, err := s.productRepo.DecrementStock(ctx, tx, d.productID, d.quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &model.InsufficientStockError{
				ProductID:   d.productID,
				ProductName: d.productName,
				Requested:   d.quantity,
			}
		}
	}

	if order.LoyaltyPointsEarned > 0 {
		entry := &model.LoyaltyTransaction{
			UserID:      in.userID,
			OrderID:     &order.ID,
			Type:        model.LoyaltyEarned,
			Points:      order.LoyaltyPointsEarned,
			Description: fmt.Sprintf("Order %s - Loyalty points earned", order.OrderNumber),
		}
		if err := recordPoints(ctx, s.loyaltyRepo, tx, entry); err != nil {
			s.logger.Error().Err(err).Int64("user_id", in.userID).Msg("failed to credit loyalty points")
			return nil, fmt.Errorf("failed to credit loyalty points: %w", err)
		}
	}

	if in.idempotencyKey != "" {
		if err := s.orderRepo.SaveIdempotencyKey(ctx, tx, in.userID, in.idempotencyKey, order.ID); err != nil {
			return nil, err
		}
	}

	order.Items = items
	order.ItemCount = len(items)

	return order, nil
}

// insertOrder inserts the order under a fresh order number, retrying inside a
// savepoint when the number is already taken.
func (s *orderService) insertOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	for attempt := 1; attempt <= s.numberAttempts; attempt++ {
		number, err := s.newNumber()
		if err != nil {
			return err
		}
		order.OrderNumber = number

		sp, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to create savepoint: %w", err)
		}

		err = s.orderRepo.CreateOrder(ctx, sp, order)
		if errors.Is(err, repository.ErrOrderNumberTaken) {
			if rbErr := sp.Rollback(ctx); rbErr != nil {
				return fmt.Errorf("failed to rollback savepoint: %w", rbErr)
			}
			s.logger.Warn().Int("attempt", attempt).Str("order_number", number).Msg("retrying with a new order number")
			continue
		}
		if err != nil {
			_ = sp.Rollback(ctx)
			return err
		}

		if err := sp.Commit(ctx); err != nil {
			return fmt.Errorf("failed to release savepoint: %w", err)
		}
		return nil
	}

	return fmt.Errorf("failed to allocate a unique order number after %d attempts", s.numberAttempts)
}

// CancelOrder cancels one of the user's orders.
func (s *orderService) CancelOrder(ctx context.Context, orderID uuid.UUID, userID int64) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err = s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if order == nil || order.UserID != userID {
		err = model.ErrOrderNotFound
		return nil, err
	}

	if !order.Status.Cancellable() {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("status", string(order.Status)).
			Msg("order cannot be cancelled")
		err = model.ErrOrderNotCancellable
		return nil, err
	}

	if err = s.cancelLocked(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("order_number", order.OrderNumber).
		Int("points_reversed", order.LoyaltyPointsEarned).
		Msg("order cancelled")

	s.afterCommit(ctx, events.OrderCancelled, order, false)

	return order, nil
}

// UpdateOrderStatus moves an order along its lifecycle. Moving to cancelled
// applies the same stock and loyalty reversal as CancelOrder.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (order *model.Order, err error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err = s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	from := order.Status
	if !from.CanTransitionTo(status) {
		err = &model.InvalidTransitionError{From: from, To: status}
		return nil, err
	}

	if status == model.StatusCancelled {
		err = s.cancelLocked(ctx, tx, order)
	} else {
		err = s.orderRepo.UpdateStatus(ctx, tx, orderID, status)
		order.Status = status
	}
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("from", string(from)).
		Str("to", string(status)).
		Msg("order status updated")

	eventType := events.OrderStatusChanged
	if status == model.StatusCancelled {
		eventType = events.OrderCancelled
	}
	s.afterCommit(ctx, eventType, order, false)

	return order, nil
}

// cancelLocked restores stock, marks the order cancelled and reverses the
// points it earned. The order row must already be locked by tx.
func (s *orderService) cancelLocked(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	lines := make([]orderLine, len(order.Items))
	for i, item := range order.Items {
		lines[i] = orderLine{productID: item.ProductID, quantity: item.Quantity}
	}

	demand, err := demandByProduct(lines)
	if err != nil {
		return err
	}

	for _, d := range demand {
		if err := s.productRepo.IncrementStock(ctx, tx, d.productID, d.quantity); err != nil {
			return err
		}
	}

	if err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.StatusCancelled); err != nil {
		return err
	}

	if order.LoyaltyPointsEarned > 0 {
		entry := &model.LoyaltyTransaction{
			UserID:      order.UserID,
			OrderID:     &order.ID,
			Type:        model.LoyaltyRedeemed,
			Points:      -order.LoyaltyPointsEarned,
			Description: fmt.Sprintf("Order %s cancelled - Points reversed", order.OrderNumber),
		}
		if err := recordPoints(ctx, s.loyaltyRepo, tx, entry); err != nil {
			s.logger.Error().Err(err).Int64("user_id", order.UserID).Msg("failed to reverse loyalty points")
			return fmt.Errorf("failed to reverse loyalty points: %w", err)
		}
	}

	order.Status = model.StatusCancelled
	return nil
}

// ListUserOrders returns the user's orders newest first.
func (s *orderService) ListUserOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// GetOrder returns one of the user's orders. Orders of other users are
// reported as not found.
func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID, userID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

func (s *orderService) validateCheckout(userID int64, shipping, billing *model.Address, paymentMethod, key string) (checkoutInput, error) {
	if userID <= 0 {
		return checkoutInput{}, model.ErrUnauthorised
	}

	if shipping == nil || strings.TrimSpace(paymentMethod) == "" {
		return checkoutInput{}, model.ErrInvalidInput
	}

	in := checkoutInput{
		userID:         userID,
		shipping:       *shipping,
		billing:        *shipping,
		paymentMethod:  strings.TrimSpace(paymentMethod),
		idempotencyKey: strings.TrimSpace(key),
	}
	if billing != nil {
		in.billing = *billing
	}

	return in, nil
}

func (s *orderService) validateItems(items []model.OrderItemRequest) error {
	if len(items) == 0 {
		return model.ErrNoItems
	}

	for i, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("Item %d: product ID is required", i))
		}

		if item.Quantity <= 0 || item.Quantity > model.MaxLineQuantity {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}

// replay returns the order recorded for the idempotency key, if any.
func (s *orderService) replay(ctx context.Context, in checkoutInput) (*model.CheckoutResult, error) {
	if in.idempotencyKey == "" {
		return nil, nil
	}

	order, err := s.orderRepo.FindByIdempotencyKey(ctx, in.userID, in.idempotencyKey)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}

	order.ItemCount = len(order.Items)
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int64("user_id", in.userID).
		Msg("replaying order for idempotency key")

	return &model.CheckoutResult{
		Order:               order,
		LoyaltyPointsEarned: order.LoyaltyPointsEarned,
		Replayed:            true,
	}, nil
}

// checkStock verifies every product can cover the summed quantity of its lines.
func (s *orderService) checkStock(lines []orderLine, stock map[string]model.Product) error {
	demand, err := demandByProduct(lines)
	if err != nil {
		return err
	}

	for _, d := range demand {
		p := stock[d.productID]
		if !p.Available(d.quantity) {
			s.logger.Warn().
				Str("product_id", d.productID).
				Int("requested", d.quantity).
				Int("available", p.StockCount).
				Bool("in_stock", p.InStock).
				Msg("insufficient stock")
			return &model.InsufficientStockError{
				ProductID:   d.productID,
				ProductName: p.Name,
				Requested:   d.quantity,
				Available:   p.StockCount,
			}
		}
	}

	return nil
}

// afterCommit publishes the order event and archives a receipt. Neither can
// affect the committed order, so failures are only logged. Both share one
// deadline that ignores cancellation of the request context.
func (s *orderService) afterCommit(ctx context.Context, t events.Type, order *model.Order, archive bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sideEffectTTL)
	defer cancel()

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewOrderEvent(t, order)); err != nil {
			s.logger.Warn().Err(err).
				Str("order_id", order.ID.String()).
				Str("event_type", string(t)).
				Msg("failed to publish order event")
		}
	}

	if archive && s.receipts != nil {
		if _, err := s.receipts.Save(ctx, order); err != nil {
			s.logger.Warn().Err(err).
				Str("order_number", order.OrderNumber).
				Msg("failed to archive receipt")
		}
	}
}

// addQuantity sums two positive line quantities, refusing results that
// overflow int.
func addQuantity(a, b int) (int, error) {
	if a <= 0 || b <= 0 || a > math.MaxInt-b {
		return 0, model.ErrInvalidQuantity
	}
	return a + b, nil
}

// demandByProduct sums line quantities per product, sorted by product id so
// row updates always happen in the same order.
func demandByProduct(lines []orderLine) ([]productDemand, error) {
	index := make(map[string]int, len(lines))
	out := make([]productDemand, 0, len(lines))

	for _, l := range lines {
		if l.quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		if i, ok := index[l.productID]; ok {
			sum, err := addQuantity(out[i].quantity, l.quantity)
			if err != nil {
				return nil, err
			}
			out[i].quantity = sum
			continue
		}
		index[l.productID] = len(out)
		out = append(out, productDemand{productID: l.productID, productName: l.productName, quantity: l.quantity})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].productID < out[j].productID })
	return out, nil
}

// mergeItems folds repeated product and size pairs into one line. A merged
// line above MaxLineQuantity is rejected.
func mergeItems(items []model.OrderItemRequest) ([]model.OrderItemRequest, error) {
	index := make(map[string]int, len(items))
	out := make([]model.OrderItemRequest, 0, len(items))

	for _, item := range items {
		item.ProductID = strings.TrimSpace(item.ProductID)
		size := ""
		if item.Size != nil {
			size = *item.Size
		}
		key := item.ProductID + "\x00" + size

		if i, ok := index[key]; ok {
			sum, err := addQuantity(out[i].Quantity, item.Quantity)
			if err != nil || sum > model.MaxLineQuantity {
				return nil, model.ErrInvalidQuantity
			}
			out[i].Quantity = sum
			continue
		}
		index[key] = len(out)
		out = append(out, item)
	}

	return out, nil
}
