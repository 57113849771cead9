package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

const walletColumns = `id, name, value, created_at, updated_at`

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	db dbtx
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return newWalletRepository(pool)
}

func newWalletRepository(db dbtx) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create inserts a new wallet.
func (r *WalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO wallets (id, name, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = q.Exec(ctx, query,
		wallet.ID,
		wallet.Name,
		decimalToNumeric(wallet.Value),
		timeToPgTimestamptz(wallet.CreatedAt),
		timeToPgTimestamptz(wallet.UpdatedAt),
	)

	return err
}

// GetByID retrieves a wallet by ID.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`

	return scanWallet(r.db.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a wallet by ID with a FOR UPDATE lock.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	q, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`

	return scanWallet(q.QueryRow(ctx, query, id))
}

// UpdateValue overwrites the cached balance of a wallet.
func (r *WalletRepository) UpdateValue(ctx context.Context, tx usecase.Transaction, id string, value decimal.Decimal, updatedAt time.Time) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	query := `UPDATE wallets SET value = $2, updated_at = $3 WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, decimalToNumeric(value), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

// List lists wallets with pagination, oldest first.
func (r *WalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
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

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var (
		w     domain.Wallet
		value pgtype.Numeric
	)

	err := row.Scan(&w.ID, &w.Name, &value, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}

	w.Value = numericToDecimal(value)

	return &w, nil
}
