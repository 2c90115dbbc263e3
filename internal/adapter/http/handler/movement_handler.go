package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coffre/internal/adapter/http/dto"
	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/usecase"
)

// MovementService defines the behavior needed by MovementHandler.
type MovementService interface {
	RecordMovement(ctx context.Context, caller *domain.User, input usecase.RecordMovementInput) (*domain.Movement, error)
	ListMovements(ctx context.Context, caller *domain.User, input usecase.ListMovementsInput) ([]*domain.Movement, error)
	DeleteMovement(ctx context.Context, caller *domain.User, vaultID, movementID string) (*domain.Movement, error)
	MovementAudit(ctx context.Context, caller *domain.User, vaultID, movementID string) ([]*domain.AuditLog, error)
}

// LedgerWriteObserver is told about successful ledger writes.
type LedgerWriteObserver interface {
	MovementRecorded(t domain.MovementType)
	MovementDeleted()
	InventoryRecorded()
}

type noopWriteObserver struct{}

func (noopWriteObserver) MovementRecorded(domain.MovementType) {}
func (noopWriteObserver) MovementDeleted()                     {}
func (noopWriteObserver) InventoryRecorded()                   {}

// MovementHandler handles movement-related HTTP requests.
type MovementHandler struct {
	movementUC MovementService
	observer   LedgerWriteObserver
}

// NewMovementHandler creates a new MovementHandler. observer may be nil.
func NewMovementHandler(movementUC MovementService, observer LedgerWriteObserver) *MovementHandler {
	if observer == nil {
		observer = noopWriteObserver{}
	}
	return &MovementHandler{movementUC: movementUC, observer: observer}
}

// Create records a movement.
func (h *MovementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordMovementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movement", err.Error())
		return
	}

	movement, err := h.movementUC.RecordMovement(r.Context(), caller(r), input)
	if err != nil {
		writeDomainError(w, "failed to record movement", err)
		return
	}

	h.observer.MovementRecorded(movement.Type)
	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// List lists movements of a vault, newest first.
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	movements, err := h.movementUC.ListMovements(r.Context(), caller(r), usecase.ListMovementsInput{
		VaultID:        chi.URLParam(r, "id"),
		IncludeDeleted: parseBoolQuery(r, "include_deleted"),
		Limit:          parseIntQuery(r, "limit", 20),
		Offset:         parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list movements", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListMovementsResponse{
		Movements: dto.MovementsFromDomain(movements),
		Total:     int64(len(movements)),
	})
}

// Delete soft-deletes a movement.
func (h *MovementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	movement, err := h.movementUC.DeleteMovement(r.Context(), caller(r), chi.URLParam(r, "id"), chi.URLParam(r, "movementID"))
	if err != nil {
		writeDomainError(w, "failed to delete movement", err)
		return
	}

	h.observer.MovementDeleted()
	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// Audit returns the audit trail of a movement.
func (h *MovementHandler) Audit(w http.ResponseWriter, r *http.Request) {
	movementID := chi.URLParam(r, "movementID")

	logs, err := h.movementUC.MovementAudit(r.Context(), caller(r), chi.URLParam(r, "id"), movementID)
	if err != nil {
		writeDomainError(w, "failed to load audit trail", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditTrailResponse{
		ResourceType: domain.ResourceTypeMovement,
		ResourceID:   movementID,
		Entries:      dto.AuditLogsFromDomain(logs),
	})
}
