package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// ReconciliationUseCase compares cached wallet balances with their items.
type ReconciliationUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	itemRepo   WalletItemRepository
	outboxRepo OutboxRepository
	metrics    MetricsRecorder
}

// NewReconciliationUseCase creates a new reconciliation use case. metrics may be nil.
func NewReconciliationUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	itemRepo WalletItemRepository,
	outboxRepo OutboxRepository,
	metrics MetricsRecorder,
) *ReconciliationUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &ReconciliationUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		itemRepo:   itemRepo,
		outboxRepo: outboxRepo,
		metrics:    metrics,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	WalletID          string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileWallet compares the cached balance with the sum of the wallet's
// items. The two only agree at quiescence.
func (uc *ReconciliationUseCase) ReconcileWallet(ctx context.Context, walletID string) (*ReconciliationResult, error) {
	wallet, err := uc.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	sum, err := uc.itemRepo.SumByWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	result := newReconciliationResult(walletID, wallet.Value, sum)
	if !result.IsReconciled {
		uc.metrics.BalanceMismatch(walletID)
		zerolog.Ctx(ctx).Warn().
			Str("wallet_id", walletID).
			Str("recorded", wallet.Value.String()).
			Str("calculated", sum.String()).
			Msg("wallet balance does not match its items")
	}

	return result, nil
}

// RepairWallet rewrites the cached balance from the items. The sum is taken
// while the wallet row lock is held, so no item mutation can interleave.
func (uc *ReconciliationUseCase) RepairWallet(ctx context.Context, walletID string) (*ReconciliationResult, error) {
	var recorded, calculated decimal.Decimal

	_, err := overwriteValue(ctx, uc.txManager, uc.walletRepo, uc.outboxRepo, walletID, func(ctx context.Context, wallet *domain.Wallet) (decimal.Decimal, error) {
		sum, err := uc.itemRepo.SumByWallet(ctx, walletID)
		if err != nil {
			return decimal.Zero, err
		}
		recorded, calculated = wallet.Value, sum
		return sum, nil
	})
	if err != nil {
		return nil, err
	}

	if !recorded.Equal(calculated) {
		zerolog.Ctx(ctx).Info().
			Str("wallet_id", walletID).
			Str("previous", recorded.String()).
			Str("repaired", calculated.String()).
			Msg("wallet balance repaired")
	}

	return newReconciliationResult(walletID, recorded, calculated), nil
}

func newReconciliationResult(walletID string, recorded, calculated decimal.Decimal) *ReconciliationResult {
	diff := recorded.Sub(calculated)
	return &ReconciliationResult{
		WalletID:          walletID,
		RecordedBalance:   recorded,
		CalculatedBalance: calculated,
		Difference:        diff,
		IsReconciled:      diff.IsZero(),
		LastChecked:       time.Now().UTC(),
	}
}
