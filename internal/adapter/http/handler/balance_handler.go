package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coffre/internal/adapter/http/dto"
	"github.com/iho/coffre/internal/domain"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	GetBalance(ctx context.Context, caller *domain.User, vaultID string, fresh bool) (*domain.BalanceInfo, error)
}

// BalanceHandler serves derived vault balances.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// Get returns the balance of a vault. Results may be up to the cache TTL
// old; ?fresh=true forces a recomputation.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	vaultID := chi.URLParam(r, "id")

	balance, err := h.balanceUC.GetBalance(r.Context(), caller(r), vaultID, parseBoolQuery(r, "fresh"))
	if err != nil {
		writeDomainError(w, "failed to get balance", err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(vaultID, balance))
}
