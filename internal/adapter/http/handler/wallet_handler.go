package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	CreateWallet(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error)
	GetWallet(ctx context.Context, id string) (*domain.Wallet, error)
	ListWallets(ctx context.Context, input usecase.ListWalletsInput) ([]*domain.Wallet, error)
	UpdateValue(ctx context.Context, id string, value decimal.Decimal) (*domain.Wallet, error)
}

// ReconciliationService defines the behavior needed for the reconcile endpoints.
type ReconciliationService interface {
	ReconcileWallet(ctx context.Context, walletID string) (*usecase.ReconciliationResult, error)
	RepairWallet(ctx context.Context, walletID string) (*usecase.ReconciliationResult, error)
}

// WalletHandler handles wallet-related HTTP requests.
type WalletHandler struct {
	walletUC    WalletService
	reconcileUC ReconciliationService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC WalletService, reconcileUC ReconciliationService) *WalletHandler {
	return &WalletHandler{walletUC: walletUC, reconcileUC: reconcileUC}
}

// Create creates a new wallet.
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrors(w, http.StatusBadRequest, err.Error())
		return
	}

	wallet, err := h.walletUC.CreateWallet(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.WalletFromDomain(wallet))
}

// Get retrieves a wallet by ID.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.walletUC.GetWallet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// List lists wallets.
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.walletUC.ListWallets(r.Context(), usecase.ListWalletsInput{
		Limit:  parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletsFromDomain(wallets))
}

// SetValue overwrites the cached balance of a wallet.
func (h *WalletHandler) SetValue(w http.ResponseWriter, r *http.Request) {
	var req dto.SetWalletValueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrors(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Value == nil {
		writeErrors(w, http.StatusBadRequest, "value is required")
		return
	}

	wallet, err := h.walletUC.UpdateValue(r.Context(), chi.URLParam(r, "id"), *req.Value)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// Reconcile compares the cached balance with the item sum.
func (h *WalletHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconcileUC.ReconcileWallet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// Repair rewrites the cached balance from the item sum.
func (h *WalletHandler) Repair(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconcileUC.RepairWallet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}
