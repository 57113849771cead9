package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	store *Store
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(store *Store) *WalletRepository {
	return &WalletRepository{store: store}
}

// Create stages a new wallet.
func (r *WalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	w := *wallet
	return t.stage(func(s *Store) {
		s.wallets[w.ID] = &w
	})
}

// GetByID retrieves a committed wallet.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	w, ok := r.store.wallets[id]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	c := *w
	return &c, nil
}

// GetByIDForUpdate locks the wallet until tx ends and returns it.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := t.lockRow(ctx, walletKey(id)); err != nil {
		return nil, err
	}

	// Re-read: the value may have changed while waiting for the lock.
	return r.GetByID(ctx, id)
}

// UpdateValue stages a new cached balance.
func (r *WalletRepository) UpdateValue(ctx context.Context, tx usecase.Transaction, id string, value decimal.Decimal, updatedAt time.Time) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}

	return t.stage(func(s *Store) {
		if w, ok := s.wallets[id]; ok {
			w.Value = value
			w.UpdatedAt = updatedAt
		}
	})
}

// List returns wallets ordered by creation time.
func (r *WalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	wallets := make([]*domain.Wallet, 0, len(r.store.wallets))
	for _, w := range r.store.wallets {
		c := *w
		wallets = append(wallets, &c)
	}
	sort.Slice(wallets, func(i, j int) bool {
		if wallets[i].CreatedAt.Equal(wallets[j].CreatedAt) {
			return wallets[i].ID < wallets[j].ID
		}
		return wallets[i].CreatedAt.Before(wallets[j].CreatedAt)
	})

	return page(wallets, limit, offset), nil
}
