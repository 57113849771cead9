package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gowallet/internal/domain"
)

// UserWalletRepository implements usecase.UserWalletRepository.
type UserWalletRepository struct {
	db dbtx
}

// NewUserWalletRepository creates a new UserWalletRepository.
func NewUserWalletRepository(pool *pgxpool.Pool) *UserWalletRepository {
	return &UserWalletRepository{db: pool}
}

// Create inserts a user-wallet association.
func (r *UserWalletRepository) Create(ctx context.Context, userWallet *domain.UserWallet) error {
	query := `
		INSERT INTO user_wallets (id, user_id, wallet_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query,
		userWallet.ID,
		userWallet.UserID,
		userWallet.WalletID,
		timeToPgTimestamptz(userWallet.CreatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrUserWalletExists
	}

	return err
}

// Exists reports whether the user is already associated with the wallet.
func (r *UserWalletRepository) Exists(ctx context.Context, userID, walletID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM user_wallets WHERE user_id = $1 AND wallet_id = $2)`

	var exists bool
	err := r.db.QueryRow(ctx, query, userID, walletID).Scan(&exists)

	return exists, err
}

// ListWalletsByUser returns the user's wallets in association order.
func (r *UserWalletRepository) ListWalletsByUser(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	query := `
		SELECT w.id, w.name, w.value, w.created_at, w.updated_at
		FROM user_wallets uw
		JOIN wallets w ON w.id = uw.wallet_id
		WHERE uw.user_id = $1
		ORDER BY uw.created_at, uw.id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	wallets := make([]*domain.Wallet, 0)
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}

	return wallets, rows.Err()
}
