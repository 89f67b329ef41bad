package service

import (
	"context"
	"testing"

	"better-being/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoyaltyService_AddPoints(t *testing.T) {
	ctx := context.Background()

	t.Run("Credits balance and ledger", func(t *testing.T) {
		repo := new(MockLoyaltyRepository)
		tx := new(MockTx)
		svc := NewLoyaltyService(repo, zerolog.Nop())

		repo.On("BeginTx", ctx).Return(tx, nil)
		repo.On("AdjustBalance", ctx, tx, int64(42), 120).Return(nil)
		repo.On("InsertTransaction", ctx, tx, mock.MatchedBy(func(e *model.LoyaltyTransaction) bool {
			return e.Type == model.LoyaltyEarned && e.Points == 120 && e.Description == "Points added"
		})).Return(nil)
		tx.On("Commit", ctx).Return(nil)

		entry, err := svc.AddPoints(ctx, 42, 120, "")
		require.NoError(t, err)
		assert.Equal(t, 120, entry.Points)
		assert.Nil(t, entry.OrderID)
		assert.True(t, tx.committed)
		repo.AssertExpectations(t)
	})

	t.Run("Unknown user", func(t *testing.T) {
		repo := new(MockLoyaltyRepository)
		tx := new(MockTx)
		svc := NewLoyaltyService(repo, zerolog.Nop())

		repo.On("BeginTx", ctx).Return(tx, nil)
		repo.On("AdjustBalance", ctx, tx, int64(404), 10).Return(model.ErrUserNotFound)
		tx.On("Rollback", ctx).Return(nil)

		_, err := svc.AddPoints(ctx, 404, 10, "bonus")
		assert.ErrorIs(t, err, model.ErrUserNotFound)
		assert.True(t, tx.rolledBack)
	})

	for _, points := range []int{0, -5} {
		repo := new(MockLoyaltyRepository)
		svc := NewLoyaltyService(repo, zerolog.Nop())

		_, err := svc.AddPoints(ctx, 42, points, "")
		assert.ErrorIs(t, err, model.ErrInvalidPoints)
		repo.AssertNotCalled(t, "BeginTx", mock.Anything)
	}
}

func TestLoyaltyService_RedeemPoints(t *testing.T) {
	ctx := context.Background()

	t.Run("Debits balance", func(t *testing.T) {
		repo := new(MockLoyaltyRepository)
		tx := new(MockTx)
		svc := NewLoyaltyService(repo, zerolog.Nop())

		repo.On("BeginTx", ctx).Return(tx, nil)
		repo.On("DeductBalance", ctx, tx, int64(42), 100).Return(true, nil)
		repo.On("InsertTransaction", ctx, tx, mock.MatchedBy(func(e *model.LoyaltyTransaction) bool {
			return e.Type == model.LoyaltyRedeemed && e.Points == -100 && e.Description == "Gift voucher"
		})).Return(nil)
		tx.On("Commit", ctx).Return(nil)

		entry, err := svc.RedeemPoints(ctx, 42, 100, "Gift voucher")
		require.NoError(t, err)
		assert.Equal(t, -100, entry.Points)
		repo.AssertExpectations(t)
	})

	tests := []struct {
		name        string
		balance     *model.LoyaltyBalance
		expectedErr error
	}{
		{name: "Balance too low", balance: &model.LoyaltyBalance{UserID: 42, Points: 50}, expectedErr: model.ErrInsufficientPoints},
		{name: "Unknown user", balance: nil, expectedErr: model.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLoyaltyRepository)
			tx := new(MockTx)
			svc := NewLoyaltyService(repo, zerolog.Nop())

			repo.On("BeginTx", ctx).Return(tx, nil)
			repo.On("DeductBalance", ctx, tx, int64(42), 100).Return(false, nil)
			if tt.balance != nil {
				repo.On("GetBalance", ctx, int64(42)).Return(tt.balance, nil)
			} else {
				repo.On("GetBalance", ctx, int64(42)).Return(nil, nil)
			}
			tx.On("Rollback", ctx).Return(nil)

			_, err := svc.RedeemPoints(ctx, 42, 100, "")
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.True(t, tx.rolledBack)
			repo.AssertNotCalled(t, "InsertTransaction", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestLoyaltyService_BalanceAndHistory(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLoyaltyRepository)
	svc := NewLoyaltyService(repo, zerolog.Nop())

	repo.On("GetBalance", ctx, int64(42)).Return(&model.LoyaltyBalance{UserID: 42, Points: 280}, nil)
	repo.On("GetBalance", ctx, int64(404)).Return(nil, nil)
	repo.On("ListTransactions", ctx, int64(42), 50).Return([]model.LoyaltyTransaction{{UserID: 42, Points: 280}}, nil)

	balance, err := svc.GetBalance(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 280, balance.Points)

	_, err = svc.GetBalance(ctx, 404)
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	entries, err := svc.ListTransactions(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
