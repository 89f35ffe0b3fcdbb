package fulfillment

import (
	"context"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FulfillmentRepository defines the interface for fulfillment persistence
type FulfillmentRepository interface {
	// FindByID finds a fulfillment by its ID, children included
	FindByID(ctx context.Context, id uuid.UUID) (*Fulfillment, error)

	// FindByIDForUpdate loads the fulfillment holding a row lock so
	// concurrent recalculations serialize
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Fulfillment, error)

	// FindByOrderID finds the fulfillment for an order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Fulfillment, error)

	// FindByNumber finds a fulfillment by its business number
	FindByNumber(ctx context.Context, number string) (*Fulfillment, error)

	// FindWithOutstandingBalance finds fulfillments where collected money
	// does not yet cover the order value
	FindWithOutstandingBalance(ctx context.Context, filter shared.Filter) ([]Fulfillment, error)

	// FindAll finds fulfillments matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Fulfillment, error)

	// Save creates or updates a fulfillment with its children
	Save(ctx context.Context, f *Fulfillment) error

	// Count counts fulfillments matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// GenerateFulfillmentNumber generates the next number (FUL-YYYY-NNNNN)
	GenerateFulfillmentNumber(ctx context.Context) (string, error)
}

// ShipmentRepository defines the interface for shipment persistence
type ShipmentRepository interface {
	// FindByID finds a shipment by its ID, lines included
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)

	// FindByIDForUpdate loads the shipment holding a row lock for delivery
	// finalization
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Shipment, error)

	// FindByNumber finds a shipment by its business number
	FindByNumber(ctx context.Context, number string) (*Shipment, error)

	// FindByFulfillment finds all shipments of a fulfillment
	FindByFulfillment(ctx context.Context, fulfillmentID uuid.UUID) ([]Shipment, error)

	// FindInTransit finds shipments currently on the road
	FindInTransit(ctx context.Context, filter shared.Filter) ([]Shipment, error)

	// Save creates or updates a shipment with its lines
	Save(ctx context.Context, s *Shipment) error

	// GenerateShipmentNumber generates the next number (SHP-YYYY-NNNNN)
	GenerateShipmentNumber(ctx context.Context) (string, error)
}

// PaymentRepository defines the interface for payment collection persistence
type PaymentRepository interface {
	// FindByID finds a payment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentCollection, error)

	// FindByNumber finds a payment by its business number
	FindByNumber(ctx context.Context, number string) (*PaymentCollection, error)

	// FindByFulfillment finds all payments of a fulfillment
	FindByFulfillment(ctx context.Context, fulfillmentID uuid.UUID) ([]PaymentCollection, error)

	// FindOutstanding finds completed payments not yet deposited to a branch
	FindOutstanding(ctx context.Context, filter shared.Filter) ([]PaymentCollection, error)

	// Save creates or updates a payment
	Save(ctx context.Context, p *PaymentCollection) error

	// GeneratePaymentNumber generates the next number (PAY-YYYY-NNNNN)
	GeneratePaymentNumber(ctx context.Context) (string, error)
}
