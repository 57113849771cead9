package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// WalletUseCase handles wallet business logic.
type WalletUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	itemRepo   WalletItemRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	metrics    MetricsRecorder
}

// NewWalletUseCase creates a new WalletUseCase. metrics may be nil.
func NewWalletUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	itemRepo WalletItemRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics MetricsRecorder,
) *WalletUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &WalletUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		itemRepo:   itemRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		metrics:    metrics,
	}
}

// CreateWalletInput represents input for creating a wallet.
type CreateWalletInput struct {
	Name         string
	InitialValue decimal.Decimal
}

// CreateWallet creates a wallet. A positive initial value is recorded as an
// opening INFLOW item in the same transaction.
func (uc *WalletUseCase) CreateWallet(ctx context.Context, input CreateWalletInput) (*domain.Wallet, error) {
	var v domain.Validator
	v.CheckWalletName(input.Name)
	v.CheckInitialValue(input.InitialValue)
	if err := v.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, uc.createFailed(ctx, err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:        uc.idGen.Generate(),
		Name:      strings.TrimSpace(input.Name),
		Value:     input.InitialValue,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.walletRepo.Create(ctx, tx, wallet); err != nil {
		return nil, uc.createFailed(ctx, err)
	}

	var openingID string
	if input.InitialValue.IsPositive() {
		opening := &domain.WalletItem{
			ID:          uc.idGen.Generate(),
			WalletID:    wallet.ID,
			Date:        now,
			Type:        domain.ItemTypeInflow,
			Description: domain.OpeningBalanceDescription,
			Value:       input.InitialValue,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := uc.itemRepo.Create(ctx, tx, opening); err != nil {
			return nil, uc.createFailed(ctx, err)
		}
		openingID = opening.ID
	}

	event := walletEvent(domain.EventTypeWalletCreated, domain.WalletBalanceChanged{
		WalletID:        wallet.ID,
		ItemID:          openingID,
		PreviousBalance: decimal.Zero,
		CurrentBalance:  wallet.Value,
		OccurredAt:      now,
	})
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, uc.createFailed(ctx, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, uc.createFailed(ctx, err)
	}

	uc.metrics.WalletCreated()
	zerolog.Ctx(ctx).Debug().
		Str("wallet_id", wallet.ID).
		Str("value", wallet.Value.String()).
		Msg("wallet created")

	return wallet, nil
}

// createFailed wraps a failed wallet creation and records it.
func (uc *WalletUseCase) createFailed(ctx context.Context, err error) error {
	err = consistencyError(OpCreateWallet, err)
	uc.metrics.MutationFailed(OpCreateWallet, failureReason(err))
	zerolog.Ctx(ctx).Error().Err(err).Str("op", OpCreateWallet).Msg("wallet creation rolled back")
	return err
}

// GetWallet retrieves a wallet by ID.
func (uc *WalletUseCase) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return uc.walletRepo.GetByID(ctx, id)
}

// ListWalletsInput represents input for listing wallets.
type ListWalletsInput struct {
	Limit  int
	Offset int
}

// ListWallets lists wallets with pagination.
func (uc *WalletUseCase) ListWallets(ctx context.Context, input ListWalletsInput) ([]*domain.Wallet, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.walletRepo.List(ctx, limit, offset)
}

// UpdateValue overwrites the cached balance of a wallet under its row lock.
func (uc *WalletUseCase) UpdateValue(ctx context.Context, id string, value decimal.Decimal) (*domain.Wallet, error) {
	var v domain.Validator
	v.CheckWalletValue(value)
	if err := v.Err(); err != nil {
		return nil, err
	}

	wallet, err := overwriteValue(ctx, uc.txManager, uc.walletRepo, uc.outboxRepo, id, func(context.Context, *domain.Wallet) (decimal.Decimal, error) {
		return value, nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.metrics.MutationFailed(OpSetWalletValue, failureReason(err))
		}
		return nil, err
	}

	return wallet, nil
}

// overwriteValue locks the wallet, asks next for the new cached balance and
// persists it together with a wallet.value_set event.
func overwriteValue(
	ctx context.Context,
	txManager TransactionManager,
	walletRepo WalletRepository,
	outboxRepo OutboxRepository,
	id string,
	next func(ctx context.Context, wallet *domain.Wallet) (decimal.Decimal, error),
) (*domain.Wallet, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := txManager.Begin(ctx)
	if err != nil {
		return nil, consistencyError(OpSetWalletValue, err)
	}
	defer tx.Rollback(ctx)

	wallet, err := walletRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, consistencyError(OpSetWalletValue, err)
	}

	value, err := next(ctx, wallet)
	if err != nil {
		return nil, consistencyError(OpSetWalletValue, err)
	}

	now := time.Now().UTC()
	if err := walletRepo.UpdateValue(ctx, tx, id, value, now); err != nil {
		return nil, consistencyError(OpSetWalletValue, err)
	}

	event := walletEvent(domain.EventTypeWalletValueSet, domain.WalletBalanceChanged{
		WalletID:        id,
		PreviousBalance: wallet.Value,
		CurrentBalance:  value,
		OccurredAt:      now,
	})
	if err := outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, consistencyError(OpSetWalletValue, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, consistencyError(OpSetWalletValue, err)
	}

	wallet.Value = value
	wallet.UpdatedAt = now

	return wallet, nil
}

func walletEvent(eventType string, payload domain.WalletBalanceChanged) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		AggregateID:   payload.WalletID,
		AggregateType: domain.AggregateTypeWallet,
		EventType:     eventType,
		Payload:       payload.ToPayload(),
		CreatedAt:     payload.OccurredAt,
	}
}

// consistencyError passes expected domain errors through and marks anything
// else as a failed balance transaction.
func consistencyError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
		return err
	}
	return &domain.ConsistencyError{Op: op, Err: err}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, domain.ErrConsistency):
		return "consistency"
	default:
		return "internal"
	}
}
