package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// WalletItemRepository implements usecase.WalletItemRepository.
type WalletItemRepository struct {
	store *Store
}

// NewWalletItemRepository creates a new WalletItemRepository.
func NewWalletItemRepository(store *Store) *WalletItemRepository {
	return &WalletItemRepository{store: store}
}

// Create stages a new item.
func (r *WalletItemRepository) Create(ctx context.Context, tx usecase.Transaction, item *domain.WalletItem) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	it := *item
	return t.stage(func(s *Store) {
		s.seq++
		s.items[it.ID] = &storedItem{item: it, seq: s.seq}
	})
}

// GetByID retrieves a committed item.
func (r *WalletItemRepository) GetByID(ctx context.Context, id string) (*domain.WalletItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	si, ok := r.store.items[id]
	if !ok {
		return nil, domain.ErrWalletItemNotFound
	}
	c := si.item
	return &c, nil
}

// GetByIDForUpdate locks the item until tx ends and returns it.
func (r *WalletItemRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.WalletItem, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := t.lockRow(ctx, itemKey(id)); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Update stages the new field values of an item. The wallet id never changes.
func (r *WalletItemRepository) Update(ctx context.Context, tx usecase.Transaction, item *domain.WalletItem) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if _, err := r.GetByID(ctx, item.ID); err != nil {
		return err
	}

	it := *item
	return t.stage(func(s *Store) {
		if si, ok := s.items[it.ID]; ok {
			it.WalletID = si.item.WalletID
			it.CreatedAt = si.item.CreatedAt
			si.item = it
		}
	})
}

// Delete stages the removal of an item.
func (r *WalletItemRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}

	return t.stage(func(s *Store) {
		delete(s.items, id)
	})
}

// FindByWalletAndDateRange returns items dated within [start, end] ordered by
// date then id, plus the total number of matches.
func (r *WalletItemRepository) FindByWalletAndDateRange(ctx context.Context, walletID string, start, end time.Time, limit, offset int) ([]*domain.WalletItem, int64, error) {
	matched := r.collect(walletID, func(it *domain.WalletItem) bool {
		return !it.Date.Before(start) && !it.Date.After(end)
	})

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].item, matched[j].item
		if a.Date.Equal(b.Date) {
			return a.ID < b.ID
		}
		return a.Date.Before(b.Date)
	})

	return unwrap(page(matched, limit, offset)), int64(len(matched)), nil
}

// FindByWalletAndType returns items of the given type in insertion order.
func (r *WalletItemRepository) FindByWalletAndType(ctx context.Context, walletID string, itemType domain.ItemType) ([]*domain.WalletItem, error) {
	matched := r.collect(walletID, func(it *domain.WalletItem) bool {
		return it.Type == itemType
	})

	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	return unwrap(matched), nil
}

// SumByWallet returns the signed sum of a wallet's committed items.
func (r *WalletItemRepository) SumByWallet(ctx context.Context, walletID string) (decimal.Decimal, error) {
	matched := r.collect(walletID, func(*domain.WalletItem) bool { return true })
	return domain.SignedSum(unwrap(matched)), nil
}

func (r *WalletItemRepository) collect(walletID string, keep func(*domain.WalletItem) bool) []storedItem {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []storedItem
	for _, si := range r.store.items {
		if si.item.WalletID == walletID && keep(&si.item) {
			out = append(out, *si)
		}
	}
	return out
}

func unwrap(rows []storedItem) []*domain.WalletItem {
	items := make([]*domain.WalletItem, 0, len(rows))
	for i := range rows {
		it := rows[i].item
		items = append(items, &it)
	}
	return items
}
