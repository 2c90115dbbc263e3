package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/usecase"
)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	store *Store
}

// Create stores a movement.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.movements[movement.ID] = cloneMovement(movement)
	return t.record(func() { delete(s.movements, movement.ID) })
}

// GetByIDForUpdate returns a movement of the vault or domain.ErrMovementNotFound.
func (r *MovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, vaultID, id string) (*domain.Movement, error) {
	if _, err := asTx(tx); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.movements[id]
	if !ok || m.VaultID != vaultID {
		return nil, domain.ErrMovementNotFound
	}
	return cloneMovement(m), nil
}

// ListByVault returns movements of the vault, newest first.
func (r *MovementRepository) ListByVault(ctx context.Context, vaultID string, includeDeleted bool, limit, offset int) ([]*domain.Movement, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Movement, 0)
	for _, m := range s.movements {
		if m.VaultID != vaultID || (!includeDeleted && m.IsDeleted()) {
			continue
		}
		result = append(result, cloneMovement(m))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return page(result, limit, offset), nil
}

// SoftDelete marks a movement as deleted.
func (r *MovementRepository) SoftDelete(ctx context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movements[id]
	if !ok {
		return domain.ErrMovementNotFound
	}
	if m.IsDeleted() {
		return domain.ErrMovementAlreadyDeleted
	}
	at := deletedAt
	m.DeletedAt = &at

	return t.record(func() { m.DeletedAt = nil })
}

// InventoryRepository implements usecase.InventoryRepository.
type InventoryRepository struct {
	store *Store
}

// Create stores an inventory and assigns its Seq.
func (r *InventoryRepository) Create(ctx context.Context, tx usecase.Transaction, inventory *domain.Inventory) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	inventory.Seq = s.seq
	c := *inventory
	s.inventories = append(s.inventories, &c)

	return t.record(func() {
		for i, inv := range s.inventories {
			if inv.ID == c.ID {
				s.inventories = append(s.inventories[:i], s.inventories[i+1:]...)
				return
			}
		}
	})
}

// ListByVault returns inventories of the vault, newest first.
func (r *InventoryRepository) ListByVault(ctx context.Context, vaultID string, limit, offset int) ([]*domain.Inventory, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Inventory, 0)
	for _, inv := range s.inventories {
		if inv.VaultID == vaultID {
			c := *inv
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Seq > result[j].Seq
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return page(result, limit, offset), nil
}

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	store *Store
}

// CreateTx stores an audit log.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *log
	s.audits = append(s.audits, &c)

	return t.record(func() {
		for i, l := range s.audits {
			if l == &c {
				s.audits = append(s.audits[:i], s.audits[i+1:]...)
				return
			}
		}
	})
}

// ListByResource returns the audit trail of a resource, oldest first.
func (r *AuditRepository) ListByResource(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AuditLog, 0)
	for _, l := range s.audits {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			c := *l
			result = append(result, &c)
		}
	}
	return result, nil
}
