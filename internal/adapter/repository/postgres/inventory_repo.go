package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/infrastructure/postgres/generated"
	"github.com/iho/coffre/internal/usecase"
)

// InventoryRepository implements usecase.InventoryRepository.
type InventoryRepository struct {
	queries *generated.Queries
}

// NewInventoryRepository creates a new InventoryRepository.
func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return newInventoryRepository(pool)
}

func newInventoryRepository(db generated.DBTX) *InventoryRepository {
	return &InventoryRepository{queries: generated.New(db)}
}

// Create creates a new inventory and sets its sequence number.
func (r *InventoryRepository) Create(ctx context.Context, tx usecase.Transaction, inventory *domain.Inventory) error {
	total, err := decimalToNumeric(inventory.TotalAmount)
	if err != nil {
		return err
	}

	seq, err := txQueries(tx).CreateInventory(ctx, generated.CreateInventoryParams{
		ID:          inventory.ID,
		VaultID:     inventory.VaultID,
		TotalAmount: total,
		Notes:       inventory.Notes,
		CreatedBy:   inventory.CreatedBy,
		CreatedAt:   timeToPgTimestamptz(inventory.CreatedAt),
	})
	if err != nil {
		return err
	}

	inventory.Seq = seq

	return nil
}

// ListByVault lists inventories of a vault, newest first.
func (r *InventoryRepository) ListByVault(ctx context.Context, vaultID string, limit, offset int) ([]*domain.Inventory, error) {
	rows, err := r.queries.ListInventoriesByVault(ctx, generated.ListInventoriesByVaultParams{
		VaultID: vaultID,
		Limit:   int32(limit),
		Offset:  int32(offset),
	})
	if err != nil {
		return nil, err
	}

	inventories := make([]*domain.Inventory, 0, len(rows))
	for _, row := range rows {
		inventories = append(inventories, &domain.Inventory{
			ID:          row.ID,
			VaultID:     row.VaultID,
			Seq:         row.Seq,
			TotalAmount: numericToDecimal(row.TotalAmount),
			Notes:       row.Notes,
			CreatedBy:   row.CreatedBy,
			CreatedAt:   row.CreatedAt.Time,
		})
	}

	return inventories, nil
}
