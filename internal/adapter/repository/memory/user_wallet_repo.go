package memory

import (
	"context"

	"github.com/iho/gowallet/internal/domain"
)

// UserWalletRepository implements usecase.UserWalletRepository.
type UserWalletRepository struct {
	store *Store
}

// NewUserWalletRepository creates a new UserWalletRepository.
func NewUserWalletRepository(store *Store) *UserWalletRepository {
	return &UserWalletRepository{store: store}
}

// Create stores an association. Each user and wallet pair is unique.
func (r *UserWalletRepository) Create(ctx context.Context, userWallet *domain.UserWallet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[userWallet.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	if _, ok := r.store.wallets[userWallet.WalletID]; !ok {
		return domain.ErrWalletNotFound
	}
	for _, uw := range r.store.userWallets {
		if uw.UserID == userWallet.UserID && uw.WalletID == userWallet.WalletID {
			return domain.ErrUserWalletExists
		}
	}

	c := *userWallet
	r.store.userWallets = append(r.store.userWallets, &c)
	return nil
}

// Exists reports whether the user is already associated with the wallet.
func (r *UserWalletRepository) Exists(ctx context.Context, userID, walletID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, uw := range r.store.userWallets {
		if uw.UserID == userID && uw.WalletID == walletID {
			return true, nil
		}
	}
	return false, nil
}

// ListWalletsByUser returns the user's wallets in association order.
func (r *UserWalletRepository) ListWalletsByUser(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	wallets := []*domain.Wallet{}
	for _, uw := range r.store.userWallets {
		if uw.UserID != userID {
			continue
		}
		if w, ok := r.store.wallets[uw.WalletID]; ok {
			c := *w
			wallets = append(wallets, &c)
		}
	}
	return wallets, nil
}
