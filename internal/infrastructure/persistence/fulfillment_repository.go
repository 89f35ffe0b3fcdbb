package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/distroerp/backend/internal/domain/fulfillment"
	"github.com/distroerp/backend/internal/domain/shared"
)

// GormFulfillmentRepository implements fulfillment.FulfillmentRepository using GORM
type GormFulfillmentRepository struct {
	db *gorm.DB
}

// NewGormFulfillmentRepository creates a new GormFulfillmentRepository
func NewGormFulfillmentRepository(db *gorm.DB) *GormFulfillmentRepository {
	return &GormFulfillmentRepository{db: db}
}

// FindByID finds a fulfillment by its ID, children included
func (r *GormFulfillmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Fulfillment, error) {
	return r.findOne(ctx, "id = ?", []interface{}{id}, false)
}

// FindByIDForUpdate loads the fulfillment holding a row lock
func (r *GormFulfillmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*fulfillment.Fulfillment, error) {
	return r.findOne(ctx, "id = ?", []interface{}{id}, true)
}

// FindByOrderID finds the fulfillment for an order
func (r *GormFulfillmentRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*fulfillment.Fulfillment, error) {
	return r.findOne(ctx, "order_id = ?", []interface{}{orderID}, false)
}

// FindByNumber finds a fulfillment by its business number
func (r *GormFulfillmentRepository) FindByNumber(ctx context.Context, number string) (*fulfillment.Fulfillment, error) {
	return r.findOne(ctx, "fulfillment_number = ?", []interface{}{number}, false)
}

func (r *GormFulfillmentRepository) findOne(ctx context.Context, cond string, args []interface{}, forUpdate bool) (*fulfillment.Fulfillment, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		// The lock covers the fulfillment row only; children are read
		// through the same transaction.
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "fulfillments"}})
	}

	var f fulfillment.Fulfillment
	if err := query.
		Preload("Shipments.Lines").
		Preload("Payments").
		Where(cond, args...).
		First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// FindWithOutstandingBalance finds fulfillments where collected money does
// not yet cover the order value
func (r *GormFulfillmentRepository) FindWithOutstandingBalance(ctx context.Context, filter shared.Filter) ([]fulfillment.Fulfillment, error) {
	var fulfillments []fulfillment.Fulfillment
	query := applyFilter(
		r.db.WithContext(ctx).Model(&fulfillment.Fulfillment{}).
			Where("total_remaining > 0 AND status <> ?", fulfillment.FulfillmentStatusCancelled),
		filter,
	)
	if err := query.Order("created_at ASC").Find(&fulfillments).Error; err != nil {
		return nil, err
	}
	return fulfillments, nil
}

// FindAll finds fulfillments matching the filter
func (r *GormFulfillmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]fulfillment.Fulfillment, error) {
	var fulfillments []fulfillment.Fulfillment
	query := r.db.WithContext(ctx).Model(&fulfillment.Fulfillment{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if err := applyFilter(query, filter).Order("created_at DESC").Find(&fulfillments).Error; err != nil {
		return nil, err
	}
	return fulfillments, nil
}

// Save creates or updates a fulfillment with its children
func (r *GormFulfillmentRepository) Save(ctx context.Context, f *fulfillment.Fulfillment) error {
	return r.db.WithContext(ctx).Save(f).Error
}

// Count counts fulfillments matching the filter
func (r *GormFulfillmentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&fulfillment.Fulfillment{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateFulfillmentNumber generates the next number (FUL-YYYY-NNNNN)
func (r *GormFulfillmentRepository) GenerateFulfillmentNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(r.db.WithContext(ctx), &fulfillment.Fulfillment{}, "fulfillment_number", "FUL")
}

var _ fulfillment.FulfillmentRepository = (*GormFulfillmentRepository)(nil)
