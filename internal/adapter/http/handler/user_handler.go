package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gowallet/internal/adapter/http/dto"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// UserService defines the behavior needed by UserHandler.
type UserService interface {
	CreateUser(ctx context.Context, input usecase.CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// UserWalletService defines the association behavior needed by UserHandler.
type UserWalletService interface {
	CreateUserWallet(ctx context.Context, input usecase.CreateUserWalletInput) (*domain.UserWallet, error)
	ListWalletsByUser(ctx context.Context, userID string) ([]*domain.Wallet, error)
}

// UserHandler handles users and their wallet associations.
type UserHandler struct {
	userUC       UserService
	userWalletUC UserWalletService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userUC UserService, userWalletUC UserWalletService) *UserHandler {
	return &UserHandler{userUC: userUC, userWalletUC: userWalletUC}
}

// Create registers a user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrors(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userUC.CreateUser(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserFromDomain(user))
}

// Get retrieves a user by ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userUC.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// ListWallets returns the wallets linked to a user.
func (h *UserHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.userWalletUC.ListWalletsByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletsFromDomain(wallets))
}

// CreateWalletLink associates a user with a wallet.
func (h *UserHandler) CreateWalletLink(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrors(w, http.StatusBadRequest, err.Error())
		return
	}

	link, err := h.userWalletUC.CreateUserWallet(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserWalletFromDomain(link))
}
