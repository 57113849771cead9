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

// WalletItemUseCase keeps wallet balances consistent with their items.
type WalletItemUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	itemRepo   WalletItemRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	metrics    MetricsRecorder
}

// NewWalletItemUseCase creates a new WalletItemUseCase. metrics may be nil.
func NewWalletItemUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	itemRepo WalletItemRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics MetricsRecorder,
) *WalletItemUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &WalletItemUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		itemRepo:   itemRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		metrics:    metrics,
	}
}

// CreateWalletItemInput represents input for creating a wallet item.
// Nil pointers stand for omitted fields.
type CreateWalletItemInput struct {
	WalletID    string
	Date        *time.Time
	Type        *domain.ItemType
	Description string
	Value       *decimal.Decimal
}

// CreateWalletItem validates the input, persists the item and applies its
// contribution to the wallet balance in one transaction.
func (uc *WalletItemUseCase) CreateWalletItem(ctx context.Context, input CreateWalletItemInput) (*domain.WalletItem, error) {
	var v domain.Validator
	if err := uc.checkWallet(ctx, &v, input.WalletID); err != nil {
		return nil, err
	}
	v.CheckDate(input.Date)
	v.CheckItemType(input.Type)
	v.CheckDescription(input.Description)
	v.CheckItemValue(input.Value)
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &domain.WalletItem{
		ID:          uc.idGen.Generate(),
		WalletID:    input.WalletID,
		Date:        input.Date.UTC(),
		Type:        *input.Type,
		Description: strings.TrimSpace(input.Description),
		Value:       *input.Value,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := uc.mutateWallet(ctx, OpCreateWalletItem, domain.EventTypeWalletItemCreated, item.WalletID, item.ID,
		func(ctx context.Context, tx Transaction, wallet *domain.Wallet) (decimal.Decimal, error) {
			if err := uc.itemRepo.Create(ctx, tx, item); err != nil {
				return decimal.Zero, err
			}
			return wallet.Apply(item), nil
		})
	if errors.Is(err, domain.ErrWalletNotFound) {
		// The wallet vanished between validation and locking.
		return nil, domain.NewValidationError("wallet not found")
	}
	if err != nil {
		return nil, err
	}

	uc.metrics.ItemMutated(OpCreateWalletItem, item.Type, item.Value)

	return item, nil
}

// UpdateWalletItemInput represents a partial update of a wallet item.
// Nil pointers leave the field unchanged.
type UpdateWalletItemInput struct {
	ID          string
	Date        *time.Time
	Type        *domain.ItemType
	Description *string
	Value       *decimal.Decimal
}

// UpdateWalletItem reverses the item's old contribution and applies the new
// one in the same transaction that persists the item.
func (uc *WalletItemUseCase) UpdateWalletItem(ctx context.Context, input UpdateWalletItemInput) (*domain.WalletItem, error) {
	var v domain.Validator
	if input.Date != nil {
		v.CheckDate(input.Date)
	}
	if input.Type != nil {
		v.CheckItemType(input.Type)
	}
	if input.Description != nil {
		v.CheckDescription(*input.Description)
	}
	if input.Value != nil {
		v.CheckItemValue(input.Value)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	current, err := uc.itemRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	var updated domain.WalletItem
	err = uc.mutateWallet(ctx, OpUpdateWalletItem, domain.EventTypeWalletItemUpdated, current.WalletID, current.ID,
		func(ctx context.Context, tx Transaction, wallet *domain.Wallet) (decimal.Decimal, error) {
			locked, err := uc.itemRepo.GetByIDForUpdate(ctx, tx, input.ID)
			if err != nil {
				return decimal.Zero, err
			}

			reverted := wallet.Revert(locked)

			updated = *locked
			if input.Date != nil {
				updated.Date = input.Date.UTC()
			}
			if input.Type != nil {
				updated.Type = *input.Type
			}
			if input.Description != nil {
				updated.Description = strings.TrimSpace(*input.Description)
			}
			if input.Value != nil {
				updated.Value = *input.Value
			}
			updated.UpdatedAt = time.Now().UTC()

			if err := uc.itemRepo.Update(ctx, tx, &updated); err != nil {
				return decimal.Zero, err
			}

			return reverted.Add(updated.Contribution()), nil
		})
	if err != nil {
		return nil, err
	}

	uc.metrics.ItemMutated(OpUpdateWalletItem, updated.Type, updated.Value)

	return &updated, nil
}

// DeleteWalletItem reverses the item's contribution and removes it.
func (uc *WalletItemUseCase) DeleteWalletItem(ctx context.Context, id string) error {
	current, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var deleted *domain.WalletItem
	err = uc.mutateWallet(ctx, OpDeleteWalletItem, domain.EventTypeWalletItemDeleted, current.WalletID, current.ID,
		func(ctx context.Context, tx Transaction, wallet *domain.Wallet) (decimal.Decimal, error) {
			locked, err := uc.itemRepo.GetByIDForUpdate(ctx, tx, id)
			if err != nil {
				return decimal.Zero, err
			}

			if err := uc.itemRepo.Delete(ctx, tx, id); err != nil {
				return decimal.Zero, err
			}

			deleted = locked
			return wallet.Revert(locked), nil
		})
	if err != nil {
		return err
	}

	uc.metrics.ItemMutated(OpDeleteWalletItem, deleted.Type, deleted.Value)

	return nil
}

// GetWalletItem retrieves a wallet item by ID.
func (uc *WalletItemUseCase) GetWalletItem(ctx context.Context, id string) (*domain.WalletItem, error) {
	return uc.itemRepo.GetByID(ctx, id)
}

// mutateWallet locks the wallet row, runs fn, stores the balance fn returns
// and records an outbox event. Either all of it commits or none of it does.
func (uc *WalletItemUseCase) mutateWallet(
	ctx context.Context,
	op, eventType, walletID, itemID string,
	fn func(ctx context.Context, tx Transaction, wallet *domain.Wallet) (decimal.Decimal, error),
) (err error) {
	logger := zerolog.Ctx(ctx).With().
		Str("op", op).
		Str("wallet_id", walletID).
		Str("item_id", itemID).
		Logger()

	defer func() {
		if err == nil || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
			return
		}
		uc.metrics.MutationFailed(op, failureReason(err))
		logger.Error().Err(err).Msg("wallet balance transaction rolled back")
	}()

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return consistencyError(op, err)
	}
	defer tx.Rollback(ctx)

	wallet, err := uc.walletRepo.GetByIDForUpdate(ctx, tx, walletID)
	if err != nil {
		return consistencyError(op, err)
	}

	newBalance, err := fn(ctx, tx, wallet)
	if err != nil {
		return consistencyError(op, err)
	}

	now := time.Now().UTC()
	if err := uc.walletRepo.UpdateValue(ctx, tx, walletID, newBalance, now); err != nil {
		return consistencyError(op, err)
	}

	event := walletEvent(eventType, domain.WalletBalanceChanged{
		WalletID:        walletID,
		ItemID:          itemID,
		PreviousBalance: wallet.Value,
		CurrentBalance:  newBalance,
		OccurredAt:      now,
	})
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return consistencyError(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return consistencyError(op, err)
	}

	logger.Debug().
		Str("previous_balance", wallet.Value.String()).
		Str("current_balance", newBalance.String()).
		Msg("wallet balance updated")

	return nil
}

// checkWallet records a violation when walletID is missing or unknown.
func (uc *WalletItemUseCase) checkWallet(ctx context.Context, v *domain.Validator, walletID string) error {
	if strings.TrimSpace(walletID) == "" {
		v.AddError("wallet is required")
		return nil
	}

	_, err := uc.walletRepo.GetByID(ctx, walletID)
	if errors.Is(err, domain.ErrWalletNotFound) {
		v.AddError("wallet not found")
		return nil
	}

	return err
}

// FindByDateRangeInput represents a paginated date-range query.
// Page is zero-based.
type FindByDateRangeInput struct {
	WalletID string
	Start    time.Time
	End      time.Time
	Page     int
	PageSize int
}

// FindByWalletAndDateRange returns the wallet's items dated within
// [Start, End], oldest first, together with the total match count.
func (uc *WalletItemUseCase) FindByWalletAndDateRange(ctx context.Context, input FindByDateRangeInput) (*domain.Page[*domain.WalletItem], error) {
	var v domain.Validator
	v.Check(!input.Start.IsZero(), "start date is required")
	v.Check(!input.End.IsZero(), "end date is required")
	v.Check(!input.Start.After(input.End), "start date must not be after end date")
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := uc.walletRepo.GetByID(ctx, input.WalletID); err != nil {
		return nil, err
	}

	page, pageSize := domain.NormalizePage(input.Page, input.PageSize)

	items, total, err := uc.itemRepo.FindByWalletAndDateRange(ctx, input.WalletID, input.Start.UTC(), input.End.UTC(), pageSize, page*pageSize)
	if err != nil {
		return nil, err
	}

	return &domain.Page[*domain.WalletItem]{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// FindByWalletAndType returns all items of the given type in insertion order.
func (uc *WalletItemUseCase) FindByWalletAndType(ctx context.Context, walletID string, itemType domain.ItemType) ([]*domain.WalletItem, error) {
	var v domain.Validator
	v.CheckItemType(&itemType)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := uc.walletRepo.GetByID(ctx, walletID); err != nil {
		return nil, err
	}

	return uc.itemRepo.FindByWalletAndType(ctx, walletID, itemType)
}

// SumByWallet returns the signed sum of the wallet's items.
func (uc *WalletItemUseCase) SumByWallet(ctx context.Context, walletID string) (decimal.Decimal, error) {
	if _, err := uc.walletRepo.GetByID(ctx, walletID); err != nil {
		return decimal.Zero, err
	}

	return uc.itemRepo.SumByWallet(ctx, walletID)
}
