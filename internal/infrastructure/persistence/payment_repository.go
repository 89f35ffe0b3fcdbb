package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/distroerp/backend/internal/domain/fulfillment"
	"github.com/distroerp/backend/internal/domain/shared"
)

// GormPaymentRepository implements fulfillment.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.PaymentCollection, error) {
	var p fulfillment.PaymentCollection
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByNumber finds a payment by its business number
func (r *GormPaymentRepository) FindByNumber(ctx context.Context, number string) (*fulfillment.PaymentCollection, error) {
	var p fulfillment.PaymentCollection
	if err := r.db.WithContext(ctx).
		Where("payment_number = ?", number).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByFulfillment finds all payments of a fulfillment
func (r *GormPaymentRepository) FindByFulfillment(ctx context.Context, fulfillmentID uuid.UUID) ([]fulfillment.PaymentCollection, error) {
	var payments []fulfillment.PaymentCollection
	if err := r.db.WithContext(ctx).
		Where("fulfillment_id = ?", fulfillmentID).
		Order("collected_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindOutstanding finds completed payments not yet deposited to a branch,
// oldest collections first
func (r *GormPaymentRepository) FindOutstanding(ctx context.Context, filter shared.Filter) ([]fulfillment.PaymentCollection, error) {
	var payments []fulfillment.PaymentCollection
	query := applyFilter(
		r.db.WithContext(ctx).Model(&fulfillment.PaymentCollection{}).
			Where("status = ? AND is_deposited = ?", fulfillment.PaymentStatusCompleted, false),
		filter,
	)
	if err := query.Order("collected_at ASC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *fulfillment.PaymentCollection) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// GeneratePaymentNumber generates the next number (PAY-YYYY-NNNNN)
func (r *GormPaymentRepository) GeneratePaymentNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(r.db.WithContext(ctx), &fulfillment.PaymentCollection{}, "payment_number", "PAY")
}

var _ fulfillment.PaymentRepository = (*GormPaymentRepository)(nil)
