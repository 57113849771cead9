package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// WalletItemService defines the behavior needed by WalletItemHandler.
type WalletItemService interface {
	CreateWalletItem(ctx context.Context, input usecase.CreateWalletItemInput) (*domain.WalletItem, error)
	GetWalletItem(ctx context.Context, id string) (*domain.WalletItem, error)
	UpdateWalletItem(ctx context.Context, input usecase.UpdateWalletItemInput) (*domain.WalletItem, error)
	DeleteWalletItem(ctx context.Context, id string) error
	FindByWalletAndDateRange(ctx context.Context, input usecase.FindByDateRangeInput) (*domain.Page[*domain.WalletItem], error)
	FindByWalletAndType(ctx context.Context, walletID string, itemType domain.ItemType) ([]*domain.WalletItem, error)
	SumByWallet(ctx context.Context, walletID string) (decimal.Decimal, error)
}

// WalletItemHandler handles wallet item requests and wallet item queries.
type WalletItemHandler struct {
	itemUC WalletItemService
}

// NewWalletItemHandler creates a new WalletItemHandler.
func NewWalletItemHandler(itemUC WalletItemService) *WalletItemHandler {
	return &WalletItemHandler{itemUC: itemUC}
}

// Create records a new item and updates the wallet balance.
func (h *WalletItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWalletItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrors(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.itemUC.CreateWalletItem(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.WalletItemFromDomain(item))
}

// Get retrieves an item by ID.
func (h *WalletItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.itemUC.GetWalletItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletItemFromDomain(item))
}

// Update changes the supplied fields of an item.
func (h *WalletItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateWalletItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrors(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.itemUC.UpdateWalletItem(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletItemFromDomain(item))
}

// Delete removes an item and reverses its contribution.
func (h *WalletItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.itemUC.DeleteWalletItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByDateRange pages through a wallet's items between start and end.
func (h *WalletItemHandler) ListByDateRange(w http.ResponseWriter, r *http.Request) {
	var v domain.Validator
	start := parseDateQuery(r, &v, "start", dto.ParseDate)
	end := parseDateQuery(r, &v, "end", dto.ParseRangeEnd)
	if err := v.Err(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	page, err := h.itemUC.FindByWalletAndDateRange(r.Context(), usecase.FindByDateRangeInput{
		WalletID: chi.URLParam(r, "id"),
		Start:    start,
		End:      end,
		Page:     parseIntQuery(r, "page", 0),
		PageSize: parseIntQuery(r, "size", domain.DefaultPageSize),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletItemPageFromDomain(page))
}

// ListByType returns every item of one type in a wallet.
func (h *WalletItemHandler) ListByType(w http.ResponseWriter, r *http.Request) {
	itemType, err := domain.ParseItemType(chi.URLParam(r, "type"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	items, err := h.itemUC.FindByWalletAndType(r.Context(), chi.URLParam(r, "id"), itemType)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletItemsFromDomain(items))
}

// Total returns the signed sum of a wallet's items.
func (h *WalletItemHandler) Total(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	total, err := h.itemUC.SumByWallet(r.Context(), walletID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletTotalResponse{WalletID: walletID, Total: total})
}

// parseDateQuery reads a required date parameter, recording problems on v.
func parseDateQuery(r *http.Request, v *domain.Validator, key string, parse func(string) (time.Time, error)) time.Time {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		v.AddError(key + " date is required")
		return time.Time{}
	}

	t, err := parse(raw)
	if err != nil {
		v.AddError(key + " date is invalid")
		return time.Time{}
	}

	return t
}
