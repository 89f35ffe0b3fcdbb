package fulfillment

import (
	"context"

	"github.com/distroerp/backend/internal/domain/fulfillment"
	"github.com/distroerp/backend/internal/domain/order"
	"github.com/distroerp/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the repositories the
// fulfillment flow touches. Delivery finalization crosses into the stock
// ledger, so the scope carries the stock repositories too: the movement
// rows, the balance changes and the shipment's assigned marker must all
// commit or roll back as one unit.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// FulfillmentRepo returns the fulfillment repository scoped to the current transaction
	FulfillmentRepo() fulfillment.FulfillmentRepository
	// ShipmentRepo returns the shipment repository scoped to the current transaction
	ShipmentRepo() fulfillment.ShipmentRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() fulfillment.PaymentRepository
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.OrderRepository
	// StockRepo returns the stock repository scoped to the current transaction
	StockRepo() stock.StockRepository
	// MovementRepo returns the movement repository scoped to the current transaction
	MovementRepo() stock.StockMovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing with in-memory repositories.
type NoOpTransactionScope struct {
	fulfillmentRepo fulfillment.FulfillmentRepository
	shipmentRepo    fulfillment.ShipmentRepository
	paymentRepo     fulfillment.PaymentRepository
	orderRepo       order.OrderRepository
	stockRepo       stock.StockRepository
	movementRepo    stock.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	fulfillmentRepo fulfillment.FulfillmentRepository,
	shipmentRepo fulfillment.ShipmentRepository,
	paymentRepo fulfillment.PaymentRepository,
	orderRepo order.OrderRepository,
	stockRepo stock.StockRepository,
	movementRepo stock.StockMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		fulfillmentRepo: fulfillmentRepo,
		shipmentRepo:    shipmentRepo,
		paymentRepo:     paymentRepo,
		orderRepo:       orderRepo,
		stockRepo:       stockRepo,
		movementRepo:    movementRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// FulfillmentRepo returns the fulfillment repository.
func (s *NoOpTransactionScope) FulfillmentRepo() fulfillment.FulfillmentRepository {
	return s.fulfillmentRepo
}

// ShipmentRepo returns the shipment repository.
func (s *NoOpTransactionScope) ShipmentRepo() fulfillment.ShipmentRepository {
	return s.shipmentRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() fulfillment.PaymentRepository {
	return s.paymentRepo
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository {
	return s.orderRepo
}

// StockRepo returns the stock repository.
func (s *NoOpTransactionScope) StockRepo() stock.StockRepository {
	return s.stockRepo
}

// MovementRepo returns the movement repository.
func (s *NoOpTransactionScope) MovementRepo() stock.StockMovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
