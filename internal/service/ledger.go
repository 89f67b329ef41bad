package service

import (
	"context"

	"better-being/internal/model"
	"better-being/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// recordPoints moves the balance by entry.Points and appends the matching
// ledger row in the same transaction, keeping the balance equal to the sum
// of the ledger.
func recordPoints(ctx context.Context, repo repository.LoyaltyRepository, tx pgx.Tx, entry *model.LoyaltyTransaction) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := repo.AdjustBalance(ctx, tx, entry.UserID, entry.Points); err != nil {
		return err
	}
	return repo.InsertTransaction(ctx, tx, entry)
}

