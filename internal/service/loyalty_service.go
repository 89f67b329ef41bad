package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"better-being/internal/model"
	"better-being/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const transactionHistoryLimit = 50

// loyaltyService implements LoyaltyService.
type loyaltyService struct {
	loyaltyRepo repository.LoyaltyRepository
	logger      zerolog.Logger
}

// NewLoyaltyService creates a new loyalty service.
func NewLoyaltyService(loyaltyRepo repository.LoyaltyRepository, logger zerolog.Logger) LoyaltyService {
	return &loyaltyService{
		loyaltyRepo: loyaltyRepo,
		logger:      logger.With().Str("service", "loyalty").Logger(),
	}
}

// GetBalance returns the user's point balance.
func (s *loyaltyService) GetBalance(ctx context.Context, userID int64) (*model.LoyaltyBalance, error) {
	balance, err := s.loyaltyRepo.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loyalty balance: %w", err)
	}
	if balance == nil {
		return nil, model.ErrUserNotFound
	}

	return balance, nil
}

// AddPoints credits points to the user.
func (s *loyaltyService) AddPoints(ctx context.Context, userID int64, points int, description string) (entry *model.LoyaltyTransaction, err error) {
	if points <= 0 {
		return nil, model.ErrInvalidPoints
	}

	tx, err := s.loyaltyRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to add points: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	entry = &model.LoyaltyTransaction{
		UserID:      userID,
		Type:        model.LoyaltyEarned,
		Points:      points,
		Description: withDefault(description, "Points added"),
	}
	if err = recordPoints(ctx, s.loyaltyRepo, tx, entry); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to add points: %w", err)
	}

	s.logger.Info().Int64("user_id", userID).Int("points", points).Msg("loyalty points added")

	return entry, nil
}

// RedeemPoints spends points when the balance covers them.
func (s *loyaltyService) RedeemPoints(ctx context.Context, userID int64, points int, description string) (entry *model.LoyaltyTransaction, err error) {
	if points <= 0 {
		return nil, model.ErrInvalidPoints
	}

	tx, err := s.loyaltyRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem points: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	ok, err := s.loyaltyRepo.DeductBalance(ctx, tx, userID, points)
	if err != nil {
		return nil, err
	}

	if !ok {
		balance, balanceErr := s.loyaltyRepo.GetBalance(ctx, userID)
		switch {
		case balanceErr != nil:
			err = fmt.Errorf("failed to redeem points: %w", balanceErr)
		case balance == nil:
			err = model.ErrUserNotFound
		default:
			s.logger.Warn().
				Int64("user_id", userID).
				Int("requested", points).
				Int("balance", balance.Points).
				Msg("insufficient loyalty points")
			err = model.ErrInsufficientPoints
		}
		return nil, err
	}

	entry = &model.LoyaltyTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        model.LoyaltyRedeemed,
		Points:      -points,
		Description: withDefault(description, "Points redeemed"),
	}
	if err = s.loyaltyRepo.InsertTransaction(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to redeem points: %w", err)
	}

	s.logger.Info().Int64("user_id", userID).Int("points", points).Msg("loyalty points redeemed")

	return entry, nil
}

// ListTransactions returns the user's most recent ledger entries.
func (s *loyaltyService) ListTransactions(ctx context.Context, userID int64) ([]model.LoyaltyTransaction, error) {
	entries, err := s.loyaltyRepo.ListTransactions(ctx, userID, transactionHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get loyalty transactions: %w", err)
	}

	return entries, nil
}

func withDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
