package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/stock"
)

// GormStockRepository implements stock.StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByID finds a stock position by its ID
func (r *GormStockRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Stock, error) {
	var s stock.Stock
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByBranchAndProduct finds the position for a branch-product combination
func (r *GormStockRepository) FindByBranchAndProduct(ctx context.Context, branchID, productID uuid.UUID) (*stock.Stock, error) {
	return r.findByBranchAndProduct(ctx, branchID, productID, false)
}

// FindByBranchAndProductForUpdate loads the position holding a row lock
func (r *GormStockRepository) FindByBranchAndProductForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*stock.Stock, error) {
	return r.findByBranchAndProduct(ctx, branchID, productID, true)
}

func (r *GormStockRepository) findByBranchAndProduct(ctx context.Context, branchID, productID uuid.UUID, forUpdate bool) (*stock.Stock, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var s stock.Stock
	if err := query.
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetOrCreate gets the existing position or creates an empty one
func (r *GormStockRepository) GetOrCreate(ctx context.Context, branchID, productID uuid.UUID) (*stock.Stock, error) {
	return r.getOrCreate(ctx, branchID, productID, false)
}

// GetOrCreateForUpdate gets or creates the position holding a row lock
func (r *GormStockRepository) GetOrCreateForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*stock.Stock, error) {
	return r.getOrCreate(ctx, branchID, productID, true)
}

func (r *GormStockRepository) getOrCreate(ctx context.Context, branchID, productID uuid.UUID, forUpdate bool) (*stock.Stock, error) {
	s, err := r.findByBranchAndProduct(ctx, branchID, productID, forUpdate)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	created, err := stock.NewStock(branchID, productID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		// A concurrent request may have inserted the same branch-product
		// row between our lookup and insert. Re-read it in that case.
		if existing, findErr := r.findByBranchAndProduct(ctx, branchID, productID, forUpdate); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return created, nil
}

// FindByBranch finds all positions at a branch
func (r *GormStockRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]stock.Stock, error) {
	var positions []stock.Stock
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.Stock{}).Where("branch_id = ?", branchID),
		filter,
	)
	if err := query.Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// FindBelowReorderLevel finds positions at or below their reorder level
func (r *GormStockRepository) FindBelowReorderLevel(ctx context.Context, filter shared.Filter) ([]stock.Stock, error) {
	var positions []stock.Stock
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.Stock{}).
			Where("reorder_level > 0 AND quantity <= reorder_level"),
		filter,
	)
	if err := query.Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// Save creates or updates a stock position
func (r *GormStockRepository) Save(ctx context.Context, s *stock.Stock) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormStockRepository) SaveWithLock(ctx context.Context, s *stock.Stock) error {
	result := r.db.WithContext(ctx).
		Model(s).
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Updates(map[string]interface{}{
			"quantity":      s.Quantity,
			"reorder_level": s.ReorderLevel,
			"avg_unit_cost": s.AvgUnitCost,
			"version":       s.Version,
			"updated_at":    s.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountByBranch counts positions at a branch
func (r *GormStockRepository) CountByBranch(ctx context.Context, branchID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.Stock{}).
		Where("branch_id = ?", branchID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ stock.StockRepository = (*GormStockRepository)(nil)
