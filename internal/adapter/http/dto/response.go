package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Value     decimal.Decimal `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// WalletFromDomain converts a domain wallet to a response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:        w.ID,
		Name:      w.Name,
		Value:     w.Value,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// WalletsFromDomain converts domain wallets to responses.
func WalletsFromDomain(wallets []*domain.Wallet) []*WalletResponse {
	result := make([]*WalletResponse, len(wallets))
	for i, w := range wallets {
		result[i] = WalletFromDomain(w)
	}
	return result
}

// WalletItemResponse represents a wallet item in API responses.
type WalletItemResponse struct {
	ID          string          `json:"id"`
	WalletID    string          `json:"wallet_id"`
	Date        time.Time       `json:"date"`
	Type        domain.ItemType `json:"type"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// WalletItemFromDomain converts a domain item to a response.
func WalletItemFromDomain(i *domain.WalletItem) *WalletItemResponse {
	return &WalletItemResponse{
		ID:          i.ID,
		WalletID:    i.WalletID,
		Date:        i.Date,
		Type:        i.Type,
		Description: i.Description,
		Value:       i.Value,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// WalletItemsFromDomain converts domain items to responses.
func WalletItemsFromDomain(items []*domain.WalletItem) []*WalletItemResponse {
	result := make([]*WalletItemResponse, len(items))
	for i, item := range items {
		result[i] = WalletItemFromDomain(item)
	}
	return result
}

// WalletItemPageResponse is one page of a date-range query.
type WalletItemPageResponse struct {
	Items      []*WalletItemResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// WalletItemPageFromDomain converts a page of items to a response.
func WalletItemPageFromDomain(p *domain.Page[*domain.WalletItem]) *WalletItemPageResponse {
	return &WalletItemPageResponse{
		Items:      WalletItemsFromDomain(p.Items),
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(),
	}
}

// WalletTotalResponse is the signed item sum of a wallet.
type WalletTotalResponse struct {
	WalletID string          `json:"wallet_id"`
	Total    decimal.Decimal `json:"total"`
}

// ReconciliationResponse reports a cached balance against its item sum.
type ReconciliationResponse struct {
	WalletID          string          `json:"wallet_id"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	IsReconciled      bool            `json:"is_reconciled"`
	LastChecked       time.Time       `json:"last_checked"`
}

// ReconciliationFromUseCase converts a reconciliation result to a response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		WalletID:          r.WalletID,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// UserResponse represents a user. The password hash is never exposed.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// UserWalletResponse represents a user-wallet association.
type UserWalletResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	WalletID string `json:"wallet_id"`
}

// UserWalletFromDomain converts a domain association to a response.
func UserWalletFromDomain(uw *domain.UserWallet) *UserWalletResponse {
	return &UserWalletResponse{
		ID:       uw.ID,
		UserID:   uw.UserID,
		WalletID: uw.WalletID,
	}
}
