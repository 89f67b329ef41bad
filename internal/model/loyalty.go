package model

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyTransactionType classifies a ledger entry.
type LoyaltyTransactionType string

const (
	LoyaltyEarned   LoyaltyTransactionType = "earned"
	LoyaltyRedeemed LoyaltyTransactionType = "redeemed"
)

// LoyaltyTransaction is an append-only ledger entry. Points are signed:
// positive entries credit the balance, negative entries debit it.
type LoyaltyTransaction struct {
	ID          uuid.UUID              `json:"id" db:"id"`
	UserID      int64                  `json:"userId" db:"user_id"`
	OrderID     *uuid.UUID             `json:"orderId,omitempty" db:"order_id"`
	Type        LoyaltyTransactionType `json:"transactionType" db:"transaction_type"`
	Points      int                    `json:"points" db:"points"`
	Description string                 `json:"description" db:"description"`
	CreatedAt   time.Time              `json:"createdAt" db:"created_at"`
}

// LoyaltyBalance is a user's current point balance.
type LoyaltyBalance struct {
	UserID int64 `json:"userId"`
	Points int   `json:"loyaltyPoints"`
}

// AddPointsRequest is the admin payload for crediting points.
type AddPointsRequest struct {
	UserID      int64  `json:"userId" validate:"required,gt=0"`
	Points      int    `json:"points" validate:"required,gt=0"`
	Description string `json:"description" validate:"max=255"`
}

// RedeemPointsRequest is the payload for spending points.
type RedeemPointsRequest struct {
	Points      int    `json:"points" validate:"required,gt=0"`
	Description string `json:"description" validate:"max=255"`
}
