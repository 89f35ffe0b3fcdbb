package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/distroerp/backend/internal/domain/finance"
	"github.com/distroerp/backend/internal/domain/shared"
)

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense record by its ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.ExpenseRecord, error) {
	var e finance.ExpenseRecord
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// FindByBranch finds expense records for a branch
func (r *GormExpenseRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]finance.ExpenseRecord, error) {
	var records []finance.ExpenseRecord
	query := applyFilter(
		r.db.WithContext(ctx).Model(&finance.ExpenseRecord{}).Where("branch_id = ?", branchID),
		filter,
	)
	if err := query.Order("incurred_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByCategory finds expense records of a category
func (r *GormExpenseRepository) FindByCategory(ctx context.Context, category finance.ExpenseCategory, filter shared.Filter) ([]finance.ExpenseRecord, error) {
	var records []finance.ExpenseRecord
	query := applyFilter(
		r.db.WithContext(ctx).Model(&finance.ExpenseRecord{}).Where("category = ?", category),
		filter,
	)
	if err := query.Order("incurred_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Create persists a new expense record
func (r *GormExpenseRepository) Create(ctx context.Context, e *finance.ExpenseRecord) error {
	return r.db.WithContext(ctx).Create(e).Error
}

var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
