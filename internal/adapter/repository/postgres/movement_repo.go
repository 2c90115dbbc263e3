package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/infrastructure/postgres/generated"
	"github.com/iho/coffre/internal/usecase"
)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	queries *generated.Queries
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(pool *pgxpool.Pool) *MovementRepository {
	return newMovementRepository(pool)
}

func newMovementRepository(db generated.DBTX) *MovementRepository {
	return &MovementRepository{queries: generated.New(db)}
}

// Create creates a new movement.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	amount, err := decimalToNumeric(movement.Amount)
	if err != nil {
		return err
	}

	return txQueries(tx).CreateMovement(ctx, generated.CreateMovementParams{
		ID:          movement.ID,
		VaultID:     movement.VaultID,
		Type:        string(movement.Type),
		Amount:      amount,
		Description: movement.Description,
		CreatedBy:   movement.CreatedBy,
		CreatedAt:   timeToPgTimestamptz(movement.CreatedAt),
	})
}

// GetByIDForUpdate retrieves a movement of the vault with a FOR UPDATE lock.
func (r *MovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, vaultID, id string) (*domain.Movement, error) {
	row, err := txQueries(tx).GetMovementByIDForUpdate(ctx, generated.GetMovementByIDForUpdateParams{
		VaultID: vaultID,
		ID:      id,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovementNotFound
		}

		return nil, err
	}

	return rowToMovement(row), nil
}

// ListByVault lists movements of a vault, newest first.
func (r *MovementRepository) ListByVault(ctx context.Context, vaultID string, includeDeleted bool, limit, offset int) ([]*domain.Movement, error) {
	rows, err := r.queries.ListMovementsByVault(ctx, generated.ListMovementsByVaultParams{
		VaultID:        vaultID,
		IncludeDeleted: includeDeleted,
		Limit:          int32(limit),
		Offset:         int32(offset),
	})
	if err != nil {
		return nil, err
	}

	movements := make([]*domain.Movement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, rowToMovement(row))
	}

	return movements, nil
}

// SoftDelete sets deleted_at on a live movement.
func (r *MovementRepository) SoftDelete(ctx context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	n, err := txQueries(tx).SoftDeleteMovement(ctx, generated.SoftDeleteMovementParams{
		ID:        id,
		DeletedAt: timeToPgTimestamptz(deletedAt),
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrMovementAlreadyDeleted
	}

	return nil
}

func rowToMovement(row generated.Movement) *domain.Movement {
	return &domain.Movement{
		ID:          row.ID,
		VaultID:     row.VaultID,
		Type:        domain.MovementType(row.Type),
		Amount:      numericToDecimal(row.Amount),
		Description: row.Description,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt.Time,
		DeletedAt:   pgTimestamptzToPtr(row.DeletedAt),
	}
}
