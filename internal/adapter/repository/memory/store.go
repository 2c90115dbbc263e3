// Package memory keeps the whole ledger in process memory. It backs the
// memory storage driver used for local runs and serves as a fake in tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("memory: transaction already finished")

// Store implements the ledger store, the write repositories and the
// transaction manager on top of mutex-guarded maps.
type Store struct {
	mu sync.RWMutex

	vaults      map[string]*domain.Vault
	members     map[string]map[string]time.Time
	movements   map[string]*domain.Movement
	inventories []*domain.Inventory
	audits      []*domain.AuditLog
	seq         int64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		vaults:    make(map[string]*domain.Vault),
		members:   make(map[string]map[string]time.Time),
		movements: make(map[string]*domain.Movement),
	}
}

// Tx undoes its writes on rollback unless it was committed.
type Tx struct {
	store *Store
	mu    sync.Mutex
	undo  []func()
	done  bool
}

// Commit keeps the writes made through the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.undo = nil
	return nil
}

// Rollback reverts the writes made through the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return nil
	}
	t.done = true
	undo := t.undo
	t.undo = nil
	t.mu.Unlock()

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
	return nil
}

func (t *Tx) record(fn func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.undo = append(t.undo, fn)
	return nil
}

// Begin starts a new transaction.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	return &Tx{store: s}, nil
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, errors.New("memory: foreign transaction")
	}
	return t, nil
}

// FindLatestInventory returns the latest inventory by CreatedAt, then Seq.
func (s *Store) FindLatestInventory(ctx context.Context, vaultID string) (*domain.InventorySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return latestInventory(s.inventories, vaultID), nil
}

// FindMovementsSince returns live movements of the given types created at or after since.
func (s *Store) FindMovementsSince(ctx context.Context, vaultID string, since *time.Time, types []domain.MovementType) ([]domain.MovementAmount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return movementsSince(s.movements, vaultID, since, types), nil
}

// ReadSnapshot runs fn against a frozen copy of the vault data.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, store usecase.LedgerStore) error) error {
	s.mu.RLock()
	view := &snapshot{
		movements:   make(map[string]*domain.Movement, len(s.movements)),
		inventories: make([]*domain.Inventory, len(s.inventories)),
	}
	for id, m := range s.movements {
		view.movements[id] = cloneMovement(m)
	}
	for i, inv := range s.inventories {
		c := *inv
		view.inventories[i] = &c
	}
	s.mu.RUnlock()

	return fn(ctx, view)
}

type snapshot struct {
	movements   map[string]*domain.Movement
	inventories []*domain.Inventory
}

func (v *snapshot) FindLatestInventory(ctx context.Context, vaultID string) (*domain.InventorySnapshot, error) {
	return latestInventory(v.inventories, vaultID), nil
}

func (v *snapshot) FindMovementsSince(ctx context.Context, vaultID string, since *time.Time, types []domain.MovementType) ([]domain.MovementAmount, error) {
	return movementsSince(v.movements, vaultID, since, types), nil
}

func latestInventory(inventories []*domain.Inventory, vaultID string) *domain.InventorySnapshot {
	var latest *domain.Inventory
	for _, inv := range inventories {
		if inv.VaultID != vaultID {
			continue
		}
		if latest == nil ||
			inv.CreatedAt.After(latest.CreatedAt) ||
			(inv.CreatedAt.Equal(latest.CreatedAt) && inv.Seq > latest.Seq) {
			latest = inv
		}
	}
	if latest == nil {
		return nil
	}
	return latest.Snapshot()
}

func movementsSince(movements map[string]*domain.Movement, vaultID string, since *time.Time, types []domain.MovementType) []domain.MovementAmount {
	wanted := make(map[domain.MovementType]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}

	result := make([]domain.MovementAmount, 0)
	for _, m := range movements {
		if m.VaultID != vaultID || m.IsDeleted() || !wanted[m.Type] {
			continue
		}
		if since != nil && m.CreatedAt.Before(*since) {
			continue
		}
		result = append(result, domain.MovementAmount{Type: m.Type, Amount: m.Amount})
	}
	return result
}

// Create stores a vault.
func (s *Store) Create(ctx context.Context, tx usecase.Transaction, vault *domain.Vault) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := *vault
	s.vaults[vault.ID] = &c
	return t.record(func() { delete(s.vaults, vault.ID) })
}

// GetByID returns a vault or domain.ErrVaultNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vaults[id]
	if !ok {
		return nil, domain.ErrVaultNotFound
	}
	c := *v
	return &c, nil
}

// List returns vaults ordered by creation time.
func (s *Store) List(ctx context.Context, limit, offset int) ([]*domain.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Vault, 0, len(s.vaults))
	for _, v := range s.vaults {
		c := *v
		all = append(all, &c)
	}
	return pageVaults(all, limit, offset), nil
}

// ListByMember returns the vaults the user is a member of.
func (s *Store) ListByMember(ctx context.Context, userID string, limit, offset int) ([]*domain.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Vault, 0)
	for vaultID, users := range s.members {
		if _, ok := users[userID]; !ok {
			continue
		}
		if v, ok := s.vaults[vaultID]; ok {
			c := *v
			all = append(all, &c)
		}
	}
	return pageVaults(all, limit, offset), nil
}

func pageVaults(vaults []*domain.Vault, limit, offset int) []*domain.Vault {
	sort.Slice(vaults, func(i, j int) bool {
		if vaults[i].CreatedAt.Equal(vaults[j].CreatedAt) {
			return vaults[i].ID < vaults[j].ID
		}
		return vaults[i].CreatedAt.Before(vaults[j].CreatedAt)
	})
	return page(vaults, limit, offset)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// AddMember links a user to a vault. Adding an existing member is a no-op.
func (s *Store) AddMember(ctx context.Context, tx usecase.Transaction, member *domain.VaultMember) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vaults[member.VaultID]; !ok {
		return domain.ErrVaultNotFound
	}

	users, ok := s.members[member.VaultID]
	if !ok {
		users = make(map[string]time.Time)
		s.members[member.VaultID] = users
	}
	if _, exists := users[member.UserID]; exists {
		return nil
	}
	users[member.UserID] = member.CreatedAt

	return t.record(func() { delete(users, member.UserID) })
}

// IsMember reports whether the user belongs to the vault.
func (s *Store) IsMember(ctx context.Context, vaultID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.members[vaultID][userID]
	return ok, nil
}

// MovementRepository returns the movement view of the store.
func (s *Store) MovementRepository() *MovementRepository {
	return &MovementRepository{store: s}
}

// InventoryRepository returns the inventory view of the store.
func (s *Store) InventoryRepository() *InventoryRepository {
	return &InventoryRepository{store: s}
}

// AuditRepository returns the audit view of the store.
func (s *Store) AuditRepository() *AuditRepository {
	return &AuditRepository{store: s}
}

func cloneMovement(m *domain.Movement) *domain.Movement {
	c := *m
	if m.DeletedAt != nil {
		at := *m.DeletedAt
		c.DeletedAt = &at
	}
	return &c
}
