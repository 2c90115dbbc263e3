package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coffre/internal/adapter/http/dto"
	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/usecase"
)

// InventoryService defines the behavior needed by InventoryHandler.
type InventoryService interface {
	RecordInventory(ctx context.Context, caller *domain.User, input usecase.RecordInventoryInput) (*domain.Inventory, error)
	ListInventories(ctx context.Context, caller *domain.User, input usecase.ListInventoriesInput) ([]*domain.Inventory, error)
}

// InventoryHandler handles inventory-related HTTP requests.
type InventoryHandler struct {
	inventoryUC InventoryService
	observer    LedgerWriteObserver
}

// NewInventoryHandler creates a new InventoryHandler. observer may be nil.
func NewInventoryHandler(inventoryUC InventoryService, observer LedgerWriteObserver) *InventoryHandler {
	if observer == nil {
		observer = noopWriteObserver{}
	}
	return &InventoryHandler{inventoryUC: inventoryUC, observer: observer}
}

// Create records a physical count.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordInventoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid inventory", err.Error())
		return
	}

	inventory, err := h.inventoryUC.RecordInventory(r.Context(), caller(r), input)
	if err != nil {
		writeDomainError(w, "failed to record inventory", err)
		return
	}

	h.observer.InventoryRecorded()
	writeJSON(w, http.StatusCreated, dto.InventoryFromDomain(inventory))
}

// List lists inventories of a vault, newest first.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	inventories, err := h.inventoryUC.ListInventories(r.Context(), caller(r), usecase.ListInventoriesInput{
		VaultID: chi.URLParam(r, "id"),
		Limit:   parseIntQuery(r, "limit", 20),
		Offset:  parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list inventories", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListInventoriesResponse{
		Inventories: dto.InventoriesFromDomain(inventories),
		Total:       int64(len(inventories)),
	})
}
