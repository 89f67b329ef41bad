package repository

import (
	"context"
	"testing"

	"better-being/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoyaltyRepository_BalanceAndLedger(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	userID := seedUser(t, pool, "loyal@example.com", 100)
	repo := NewLoyaltyRepository(pool, zerolog.Nop())
	ctx := context.Background()

	balance, err := repo.GetBalance(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, 100, balance.Points)

	missing, err := repo.GetBalance(ctx, userID+1)
	require.NoError(t, err)
	assert.Nil(t, missing)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.AdjustBalance(ctx, tx, userID, 50))

	deducted, err := repo.DeductBalance(ctx, tx, userID, 200)
	require.NoError(t, err)
	assert.False(t, deducted)

	deducted, err = repo.DeductBalance(ctx, tx, userID, 150)
	require.NoError(t, err)
	assert.True(t, deducted)

	earned := &model.LoyaltyTransaction{ID: uuid.New(), UserID: userID, Type: model.LoyaltyEarned, Points: 50, Description: "Welcome bonus"}
	redeemed := &model.LoyaltyTransaction{ID: uuid.New(), UserID: userID, Type: model.LoyaltyRedeemed, Points: -150, Description: "Voucher"}
	require.NoError(t, repo.InsertTransaction(ctx, tx, earned))
	require.NoError(t, repo.InsertTransaction(ctx, tx, redeemed))
	assert.False(t, earned.CreatedAt.IsZero())

	err = repo.AdjustBalance(ctx, tx, userID+1, 10)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	require.NoError(t, tx.Rollback(ctx))

	// Only committed adjustments reach the balance.
	tx, err = repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.AdjustBalance(ctx, tx, userID, -30))
	require.NoError(t, repo.InsertTransaction(ctx, tx, &model.LoyaltyTransaction{
		ID: uuid.New(), UserID: userID, Type: model.LoyaltyRedeemed, Points: -30, Description: "Reversal",
	}))
	require.NoError(t, tx.Commit(ctx))

	balance, err = repo.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 70, balance.Points)

	entries, err := repo.ListTransactions(ctx, userID, 50)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, -30, entries[0].Points)
	assert.Equal(t, model.LoyaltyRedeemed, entries[0].Type)
	assert.Nil(t, entries[0].OrderID)
}
