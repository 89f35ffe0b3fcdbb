package finance

import (
	"context"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ExpenseRepository defines the interface for expense record persistence
type ExpenseRepository interface {
	// FindByID finds an expense record by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ExpenseRecord, error)

	// FindByBranch finds expense records for a branch
	FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]ExpenseRecord, error)

	// FindByCategory finds expense records of a category
	FindByCategory(ctx context.Context, category ExpenseCategory, filter shared.Filter) ([]ExpenseRecord, error)

	// Create persists a new expense record
	Create(ctx context.Context, e *ExpenseRecord) error
}
