package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coffre/internal/adapter/http/dto"
	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/usecase"
)

// VaultService defines the behavior needed by VaultHandler.
type VaultService interface {
	CreateVault(ctx context.Context, caller *domain.User, input usecase.CreateVaultInput) (*domain.Vault, error)
	GetVault(ctx context.Context, caller *domain.User, id string) (*domain.Vault, error)
	ListVaults(ctx context.Context, caller *domain.User, input usecase.ListVaultsInput) ([]*domain.Vault, error)
	AddMember(ctx context.Context, caller *domain.User, vaultID, userID string) (*domain.VaultMember, error)
}

// VaultHandler handles vault-related HTTP requests.
type VaultHandler struct {
	vaultUC VaultService
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(vaultUC VaultService) *VaultHandler {
	return &VaultHandler{vaultUC: vaultUC}
}

// Create creates a new vault.
func (h *VaultHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateVaultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	vault, err := h.vaultUC.CreateVault(r.Context(), caller(r), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create vault", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.VaultFromDomain(vault))
}

// Get retrieves a vault by ID.
func (h *VaultHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	vault, err := h.vaultUC.GetVault(r.Context(), caller(r), id)
	if err != nil {
		writeDomainError(w, "failed to get vault", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VaultFromDomain(vault))
}

// List lists vaults visible to the caller.
func (h *VaultHandler) List(w http.ResponseWriter, r *http.Request) {
	vaults, err := h.vaultUC.ListVaults(r.Context(), caller(r), usecase.ListVaultsInput{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list vaults", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListVaultsResponse{
		Vaults: dto.VaultsFromDomain(vaults),
		Total:  int64(len(vaults)),
	})
}

// AddMember grants a user access to a vault.
func (h *VaultHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req dto.AddMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	member, err := h.vaultUC.AddMember(r.Context(), caller(r), chi.URLParam(r, "id"), req.UserID)
	if err != nil {
		writeDomainError(w, "failed to add member", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.VaultMemberFromDomain(member))
}
