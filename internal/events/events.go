package events

import (
	"context"
	"time"

	"better-being/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type names an order lifecycle event.
type Type string

const (
	OrderCreated       Type = "order.created"
	OrderCancelled     Type = "order.cancelled"
	OrderStatusChanged Type = "order.status_changed"
)

// Event is the message published after an order transaction commits.
type Event struct {
	ID          uuid.UUID         `json:"id"`
	Type        Type              `json:"type"`
	OrderID     uuid.UUID         `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	UserID      int64             `json:"userId"`
	Status      model.OrderStatus `json:"status"`
	Total       decimal.Decimal   `json:"total"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// Publisher delivers order events. Publishing happens after commit, so a
// failed publish never affects the order itself.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NewOrderEvent builds an event describing the order's current state.
func NewOrderEvent(t Type, order *model.Order) Event {
	return Event{
		ID:          uuid.New(),
		Type:        t,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		Total:       order.Total,
		OccurredAt:  time.Now().UTC(),
	}
}
