package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/infrastructure/postgres/generated"
	"github.com/iho/coffre/internal/usecase"
)

// VaultRepository implements usecase.VaultRepository.
type VaultRepository struct {
	queries *generated.Queries
}

// NewVaultRepository creates a new VaultRepository.
func NewVaultRepository(pool *pgxpool.Pool) *VaultRepository {
	return newVaultRepository(pool)
}

func newVaultRepository(db generated.DBTX) *VaultRepository {
	return &VaultRepository{queries: generated.New(db)}
}

// Create creates a new vault.
func (r *VaultRepository) Create(ctx context.Context, tx usecase.Transaction, vault *domain.Vault) error {
	return txQueries(tx).CreateVault(ctx, generated.CreateVaultParams{
		ID:        vault.ID,
		Name:      vault.Name,
		CreatedAt: timeToPgTimestamptz(vault.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(vault.UpdatedAt),
	})
}

// GetByID retrieves a vault by ID.
func (r *VaultRepository) GetByID(ctx context.Context, id string) (*domain.Vault, error) {
	row, err := r.queries.GetVaultByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVaultNotFound
		}

		return nil, err
	}

	return rowToVault(row), nil
}

// List lists vaults with pagination.
func (r *VaultRepository) List(ctx context.Context, limit, offset int) ([]*domain.Vault, error) {
	rows, err := r.queries.ListVaults(ctx, generated.ListVaultsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToVaults(rows), nil
}

// ListByMember lists the vaults a user belongs to.
func (r *VaultRepository) ListByMember(ctx context.Context, userID string, limit, offset int) ([]*domain.Vault, error) {
	rows, err := r.queries.ListVaultsByMember(ctx, generated.ListVaultsByMemberParams{
		UserID: userID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToVaults(rows), nil
}

// AddMember adds a user to a vault. Existing memberships are left untouched.
func (r *VaultRepository) AddMember(ctx context.Context, tx usecase.Transaction, member *domain.VaultMember) error {
	return txQueries(tx).AddVaultMember(ctx, generated.AddVaultMemberParams{
		VaultID:   member.VaultID,
		UserID:    member.UserID,
		CreatedAt: timeToPgTimestamptz(member.CreatedAt),
	})
}

// IsMember reports whether the user belongs to the vault.
func (r *VaultRepository) IsMember(ctx context.Context, vaultID, userID string) (bool, error) {
	return r.queries.IsVaultMember(ctx, generated.IsVaultMemberParams{
		VaultID: vaultID,
		UserID:  userID,
	})
}

func rowToVault(row generated.Vault) *domain.Vault {
	return &domain.Vault{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func rowsToVaults(rows []generated.Vault) []*domain.Vault {
	vaults := make([]*domain.Vault, 0, len(rows))
	for _, row := range rows {
		vaults = append(vaults, rowToVault(row))
	}
	return vaults
}
