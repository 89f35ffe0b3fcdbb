package stock

import (
	"context"
	"time"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockRepository defines the interface for stock position persistence
type StockRepository interface {
	// FindByID finds a stock position by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Stock, error)

	// FindByBranchAndProduct finds the position for a branch-product combination
	FindByBranchAndProduct(ctx context.Context, branchID, productID uuid.UUID) (*Stock, error)

	// FindByBranchAndProductForUpdate loads the position holding a row lock
	// for the duration of the surrounding transaction
	FindByBranchAndProductForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*Stock, error)

	// GetOrCreate gets the existing position or creates an empty one
	GetOrCreate(ctx context.Context, branchID, productID uuid.UUID) (*Stock, error)

	// GetOrCreateForUpdate gets or creates the position holding a row lock
	GetOrCreateForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*Stock, error)

	// FindByBranch finds all positions at a branch
	FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]Stock, error)

	// FindBelowReorderLevel finds positions at or below their reorder level
	FindBelowReorderLevel(ctx context.Context, filter shared.Filter) ([]Stock, error)

	// Save creates or updates a stock position
	Save(ctx context.Context, s *Stock) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, s *Stock) error

	// CountByBranch counts positions at a branch
	CountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error)
}

// StockMovementRepository defines the interface for movement persistence.
// Movements are append-only; there is no update beyond the applied flag set
// in the same transaction as the balance change.
type StockMovementRepository interface {
	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindByStock finds movements for a stock position
	FindByStock(ctx context.Context, stockID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByReference finds movements by source document reference
	FindByReference(ctx context.Context, reference string) ([]StockMovement, error)

	// FindByDateRange finds movements within a date range
	FindByDateRange(ctx context.Context, branchID uuid.UUID, start, end time.Time, filter shared.Filter) ([]StockMovement, error)

	// Create persists a new movement
	Create(ctx context.Context, m *StockMovement) error

	// Update persists the applied flag of an existing movement
	Update(ctx context.Context, m *StockMovement) error

	// CountByStock counts movements for a stock position
	CountByStock(ctx context.Context, stockID uuid.UUID) (int64, error)
}
