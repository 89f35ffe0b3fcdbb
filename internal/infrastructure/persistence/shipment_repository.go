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

// GormShipmentRepository implements fulfillment.ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByID finds a shipment by its ID, lines included
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.Shipment, error) {
	return r.findOne(ctx, "id = ?", []interface{}{id}, false)
}

// FindByIDForUpdate loads the shipment holding a row lock
func (r *GormShipmentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*fulfillment.Shipment, error) {
	return r.findOne(ctx, "id = ?", []interface{}{id}, true)
}

// FindByNumber finds a shipment by its business number
func (r *GormShipmentRepository) FindByNumber(ctx context.Context, number string) (*fulfillment.Shipment, error) {
	return r.findOne(ctx, "shipment_number = ?", []interface{}{number}, false)
}

func (r *GormShipmentRepository) findOne(ctx context.Context, cond string, args []interface{}, forUpdate bool) (*fulfillment.Shipment, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "shipments"}})
	}

	var s fulfillment.Shipment
	if err := query.
		Preload("Lines").
		Where(cond, args...).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByFulfillment finds all shipments of a fulfillment
func (r *GormShipmentRepository) FindByFulfillment(ctx context.Context, fulfillmentID uuid.UUID) ([]fulfillment.Shipment, error) {
	var shipments []fulfillment.Shipment
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("fulfillment_id = ?", fulfillmentID).
		Order("created_at ASC").
		Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// FindInTransit finds shipments currently on the road
func (r *GormShipmentRepository) FindInTransit(ctx context.Context, filter shared.Filter) ([]fulfillment.Shipment, error) {
	var shipments []fulfillment.Shipment
	query := applyFilter(
		r.db.WithContext(ctx).Model(&fulfillment.Shipment{}).
			Preload("Lines").
			Where("status = ?", fulfillment.ShipmentStatusInTransit),
		filter,
	)
	if err := query.Order("scheduled_at ASC").Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// Save creates or updates a shipment with its lines. Line rows must follow
// quantity corrections, so associations are fully saved.
func (r *GormShipmentRepository) Save(ctx context.Context, s *fulfillment.Shipment) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(s).Error
}

// GenerateShipmentNumber generates the next number (SHP-YYYY-NNNNN)
func (r *GormShipmentRepository) GenerateShipmentNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(r.db.WithContext(ctx), &fulfillment.Shipment{}, "shipment_number", "SHP")
}

var _ fulfillment.ShipmentRepository = (*GormShipmentRepository)(nil)
