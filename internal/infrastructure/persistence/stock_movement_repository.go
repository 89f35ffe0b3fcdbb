package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/stock"
)

// GormStockMovementRepository implements stock.StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormStockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockMovement, error) {
	var m stock.StockMovement
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByStock finds movements for a stock position
func (r *GormStockMovementRepository) FindByStock(ctx context.Context, stockID uuid.UUID, filter shared.Filter) ([]stock.StockMovement, error) {
	var movements []stock.StockMovement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.StockMovement{}).Where("stock_id = ?", stockID),
		filter,
	)
	if err := query.Order("created_at DESC").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByReference finds movements by source document reference
func (r *GormStockMovementRepository) FindByReference(ctx context.Context, reference string) ([]stock.StockMovement, error) {
	var movements []stock.StockMovement
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByDateRange finds movements within a date range at a branch
func (r *GormStockMovementRepository) FindByDateRange(ctx context.Context, branchID uuid.UUID, start, end time.Time, filter shared.Filter) ([]stock.StockMovement, error) {
	var movements []stock.StockMovement
	query := applyFilter(
		r.db.WithContext(ctx).Model(&stock.StockMovement{}).
			Where("branch_id = ? AND created_at >= ? AND created_at < ?", branchID, start, end),
		filter,
	)
	if err := query.Order("created_at ASC").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Create persists a new movement
func (r *GormStockMovementRepository) Create(ctx context.Context, m *stock.StockMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// Update persists the applied flag of an existing movement
func (r *GormStockMovementRepository) Update(ctx context.Context, m *stock.StockMovement) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// CountByStock counts movements for a stock position
func (r *GormStockMovementRepository) CountByStock(ctx context.Context, stockID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.StockMovement{}).
		Where("stock_id = ?", stockID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ stock.StockMovementRepository = (*GormStockMovementRepository)(nil)
