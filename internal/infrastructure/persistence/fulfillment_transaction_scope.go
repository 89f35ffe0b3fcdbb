package persistence

import (
	"context"

	"gorm.io/gorm"

	appfulfillment "github.com/distroerp/backend/internal/application/fulfillment"
	"github.com/distroerp/backend/internal/domain/fulfillment"
	"github.com/distroerp/backend/internal/domain/order"
	"github.com/distroerp/backend/internal/domain/stock"
)

// GormFulfillmentTransactionScope implements the fulfillment application's
// TransactionScope using GORM transactions. Delivery finalization mutates
// shipments and stock positions in the same unit of work, so the scope
// spans both sets of repositories.
type GormFulfillmentTransactionScope struct {
	db *gorm.DB
}

// NewGormFulfillmentTransactionScope creates a new GormFulfillmentTransactionScope
func NewGormFulfillmentTransactionScope(db *gorm.DB) *GormFulfillmentTransactionScope {
	return &GormFulfillmentTransactionScope{db: db}
}

// Execute runs fn within a database transaction. An error from fn rolls
// the transaction back.
func (s *GormFulfillmentTransactionScope) Execute(ctx context.Context, fn func(repos appfulfillment.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormFulfillmentTransactionalRepositories{tx: tx})
	})
}

type gormFulfillmentTransactionalRepositories struct {
	tx *gorm.DB
}

// FulfillmentRepo returns the fulfillment repository scoped to the current transaction
func (r *gormFulfillmentTransactionalRepositories) FulfillmentRepo() fulfillment.FulfillmentRepository {
	return NewGormFulfillmentRepository(r.tx)
}

// ShipmentRepo returns the shipment repository scoped to the current transaction
func (r *gormFulfillmentTransactionalRepositories) ShipmentRepo() fulfillment.ShipmentRepository {
	return NewGormShipmentRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction
func (r *gormFulfillmentTransactionalRepositories) PaymentRepo() fulfillment.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *gormFulfillmentTransactionalRepositories) OrderRepo() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// StockRepo returns the stock repository scoped to the current transaction
func (r *gormFulfillmentTransactionalRepositories) StockRepo() stock.StockRepository {
	return NewGormStockRepository(r.tx)
}

// MovementRepo returns the movement repository scoped to the current transaction
func (r *gormFulfillmentTransactionalRepositories) MovementRepo() stock.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

var _ appfulfillment.TransactionScope = (*GormFulfillmentTransactionScope)(nil)
var _ appfulfillment.TransactionalRepositories = (*gormFulfillmentTransactionalRepositories)(nil)
