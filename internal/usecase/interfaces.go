package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/coffre/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// LedgerStore is the read-only view of movements and inventories used by the balance engine.
type LedgerStore interface {
	// FindLatestInventory returns the most recent inventory of the vault, or nil when none exists.
	FindLatestInventory(ctx context.Context, vaultID string) (*domain.InventorySnapshot, error)
	// FindMovementsSince returns non-deleted movements of the given types created at or after
	// since. A nil since means the whole history.
	FindMovementsSince(ctx context.Context, vaultID string, since *time.Time, types []domain.MovementType) ([]domain.MovementAmount, error)
}

// LedgerSnapshotter runs several LedgerStore reads against one consistent snapshot.
type LedgerSnapshotter interface {
	ReadSnapshot(ctx context.Context, fn func(ctx context.Context, store LedgerStore) error) error
}

// VaultRepository defines data access for vaults and their members.
type VaultRepository interface {
	Create(ctx context.Context, tx Transaction, vault *domain.Vault) error
	GetByID(ctx context.Context, id string) (*domain.Vault, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Vault, error)
	ListByMember(ctx context.Context, userID string, limit, offset int) ([]*domain.Vault, error)
	AddMember(ctx context.Context, tx Transaction, member *domain.VaultMember) error
	IsMember(ctx context.Context, vaultID, userID string) (bool, error)
}

// MovementRepository defines data access for movements.
type MovementRepository interface {
	Create(ctx context.Context, tx Transaction, movement *domain.Movement) error
	GetByIDForUpdate(ctx context.Context, tx Transaction, vaultID, id string) (*domain.Movement, error)
	ListByVault(ctx context.Context, vaultID string, includeDeleted bool, limit, offset int) ([]*domain.Movement, error)
	SoftDelete(ctx context.Context, tx Transaction, id string, deletedAt time.Time) error
}

// InventoryRepository defines data access for inventories.
type InventoryRepository interface {
	// Create persists the inventory and sets its store-assigned Seq.
	Create(ctx context.Context, tx Transaction, inventory *domain.Inventory) error
	ListByVault(ctx context.Context, vaultID string, limit, offset int) ([]*domain.Inventory, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	ListByResource(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock is the time source. Injected so TTL expiry can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release frees a key whose request did not complete.
	Release(ctx context.Context, key string) error
}

// CacheResult labels the outcome of a balance cache lookup.
type CacheResult string

const (
	CacheHit       CacheResult = "hit"
	CacheSharedHit CacheResult = "shared_hit"
	CacheMiss      CacheResult = "miss"
)

// BalanceObserver receives balance engine and cache measurements.
type BalanceObserver interface {
	ObserveBalanceComputation(d time.Duration, err error)
	ObserveCacheLookup(result CacheResult)
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

type noopObserver struct{}

func (noopObserver) ObserveBalanceComputation(time.Duration, error) {}
func (noopObserver) ObserveCacheLookup(CacheResult)                 {}
