package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusConfirmed, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{OrderStatus("lost"), StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_Cancellable(t *testing.T) {
	assert.True(t, StatusPending.Cancellable())
	assert.True(t, StatusConfirmed.Cancellable())
	assert.True(t, StatusProcessing.Cancellable())
	assert.False(t, StatusShipped.Cancellable())
	assert.False(t, StatusDelivered.Cancellable())
	assert.False(t, StatusCancelled.Cancellable())
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, StatusDelivered.Valid())
	assert.False(t, OrderStatus("refunded").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestTypedErrors(t *testing.T) {
	stockErr := fmt.Errorf("failed to reserve stock: %w", &InsufficientStockError{ProductID: "P001", ProductName: "Magnesium"})
	assert.True(t, errors.Is(stockErr, &InsufficientStockError{}))
	assert.Equal(t, "failed to reserve stock: Insufficient stock for Magnesium", stockErr.Error())

	var target *InsufficientStockError
	assert.True(t, errors.As(stockErr, &target))
	assert.Equal(t, "P001", target.ProductID)

	notFound := &ProductNotFoundError{ProductID: "P404"}
	assert.ErrorIs(t, notFound, ErrProductNotFound)
	assert.Equal(t, "Product not found: P404", notFound.Error())

	transition := &InvalidTransitionError{From: StatusDelivered, To: StatusPending}
	assert.ErrorIs(t, transition, ErrInvalidTransition)
}
