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

const walletItemColumns = `id, wallet_id, item_date, type, description, value, created_at, updated_at`

// WalletItemRepository implements usecase.WalletItemRepository.
type WalletItemRepository struct {
	db dbtx
}

// NewWalletItemRepository creates a new WalletItemRepository.
func NewWalletItemRepository(pool *pgxpool.Pool) *WalletItemRepository {
	return newWalletItemRepository(pool)
}

func newWalletItemRepository(db dbtx) *WalletItemRepository {
	return &WalletItemRepository{db: db}
}

// Create inserts a new wallet item.
func (r *WalletItemRepository) Create(ctx context.Context, tx usecase.Transaction, item *domain.WalletItem) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO wallet_items (id, wallet_id, item_date, type, description, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = q.Exec(ctx, query,
		item.ID,
		item.WalletID,
		timeToPgTimestamptz(item.Date),
		string(item.Type),
		item.Description,
		decimalToNumeric(item.Value),
		timeToPgTimestamptz(item.CreatedAt),
		timeToPgTimestamptz(item.UpdatedAt),
	)

	return err
}

// GetByID retrieves a wallet item by ID.
func (r *WalletItemRepository) GetByID(ctx context.Context, id string) (*domain.WalletItem, error) {
	query := `SELECT ` + walletItemColumns + ` FROM wallet_items WHERE id = $1`

	return scanWalletItem(r.db.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a wallet item by ID with a FOR UPDATE lock.
func (r *WalletItemRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.WalletItem, error) {
	q, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + walletItemColumns + ` FROM wallet_items WHERE id = $1 FOR UPDATE`

	return scanWalletItem(q.QueryRow(ctx, query, id))
}

// Update persists the mutable fields of a wallet item.
func (r *WalletItemRepository) Update(ctx context.Context, tx usecase.Transaction, item *domain.WalletItem) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	query := `
		UPDATE wallet_items
		SET item_date = $2, type = $3, description = $4, value = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		item.ID,
		timeToPgTimestamptz(item.Date),
		string(item.Type),
		item.Description,
		decimalToNumeric(item.Value),
		timeToPgTimestamptz(item.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletItemNotFound
	}

	return nil
}

// Delete removes a wallet item.
func (r *WalletItemRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `DELETE FROM wallet_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletItemNotFound
	}

	return nil
}

// FindByWalletAndDateRange returns one page of items dated within
// [start, end] and the total number of matches.
func (r *WalletItemRepository) FindByWalletAndDateRange(ctx context.Context, walletID string, start, end time.Time, limit, offset int) ([]*domain.WalletItem, int64, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM wallet_items
		WHERE wallet_id = $1 AND item_date BETWEEN $2 AND $3
	`

	var total int64
	if err := r.db.QueryRow(ctx, countQuery, walletID, timeToPgTimestamptz(start), timeToPgTimestamptz(end)).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + walletItemColumns + `
		FROM wallet_items
		WHERE wallet_id = $1 AND item_date BETWEEN $2 AND $3
		ORDER BY item_date, id
		LIMIT $4 OFFSET $5
	`

	items, err := r.queryItems(ctx, query, walletID, timeToPgTimestamptz(start), timeToPgTimestamptz(end), limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// FindByWalletAndType returns every item of the given type in insertion order.
func (r *WalletItemRepository) FindByWalletAndType(ctx context.Context, walletID string, itemType domain.ItemType) ([]*domain.WalletItem, error) {
	query := `
		SELECT ` + walletItemColumns + `
		FROM wallet_items
		WHERE wallet_id = $1 AND type = $2
		ORDER BY created_at, id
	`

	return r.queryItems(ctx, query, walletID, string(itemType))
}

// SumByWallet returns the signed sum of a wallet's items.
func (r *WalletItemRepository) SumByWallet(ctx context.Context, walletID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'INFLOW' THEN value ELSE -value END), 0)
		FROM wallet_items
		WHERE wallet_id = $1
	`

	var sum pgtype.Numeric
	if err := r.db.QueryRow(ctx, query, walletID).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

func (r *WalletItemRepository) queryItems(ctx context.Context, query string, args ...any) ([]*domain.WalletItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.WalletItem, 0)
	for rows.Next() {
		item, err := scanWalletItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanWalletItem(row pgx.Row) (*domain.WalletItem, error) {
	var (
		item     domain.WalletItem
		itemType string
		value    pgtype.Numeric
	)

	err := row.Scan(
		&item.ID,
		&item.WalletID,
		&item.Date,
		&itemType,
		&item.Description,
		&value,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletItemNotFound
		}
		return nil, err
	}

	item.Type = domain.ItemType(itemType)
	item.Value = numericToDecimal(value)

	return &item, nil
}
