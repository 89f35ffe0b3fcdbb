package fulfillment

import (
	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for the fulfillment context
const (
	EventTypeFulfillmentCreated   = "fulfillment.created"
	EventTypeFulfillmentCancelled = "fulfillment.cancelled"
	EventTypeShipmentAllocated    = "fulfillment.shipment_allocated"
	EventTypeShipmentDelivered    = "fulfillment.shipment_delivered"
	EventTypePaymentConfirmed     = "fulfillment.payment_confirmed"
	EventTypePaymentDeposited     = "fulfillment.payment_deposited"
)

const aggregateTypeFulfillment = "Fulfillment"

// FulfillmentCreatedEvent is emitted when fulfillment tracking starts for an order
type FulfillmentCreatedEvent struct {
	shared.BaseDomainEvent
	FulfillmentNumber string          `json:"fulfillment_number"`
	OrderID           uuid.UUID       `json:"order_id"`
	TotalItemsOrdered int64           `json:"total_items_ordered"`
	TotalOrderValue   decimal.Decimal `json:"total_order_value"`
}

// NewFulfillmentCreatedEvent creates a new FulfillmentCreatedEvent
func NewFulfillmentCreatedEvent(f *Fulfillment) *FulfillmentCreatedEvent {
	return &FulfillmentCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeFulfillmentCreated, aggregateTypeFulfillment, f.ID),
		FulfillmentNumber: f.FulfillmentNumber,
		OrderID:           f.OrderID,
		TotalItemsOrdered: f.TotalItemsOrdered,
		TotalOrderValue:   f.TotalOrderValue,
	}
}

// FulfillmentCancelledEvent is emitted when a fulfillment is explicitly cancelled
type FulfillmentCancelledEvent struct {
	shared.BaseDomainEvent
	FulfillmentNumber string `json:"fulfillment_number"`
	Reason            string `json:"reason"`
}

// NewFulfillmentCancelledEvent creates a new FulfillmentCancelledEvent
func NewFulfillmentCancelledEvent(f *Fulfillment, reason string) *FulfillmentCancelledEvent {
	return &FulfillmentCancelledEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeFulfillmentCancelled, aggregateTypeFulfillment, f.ID),
		FulfillmentNumber: f.FulfillmentNumber,
		Reason:            reason,
	}
}

// ShipmentAllocatedEvent is emitted when a new shipment is carved out of a fulfillment
type ShipmentAllocatedEvent struct {
	shared.BaseDomainEvent
	FulfillmentNumber string    `json:"fulfillment_number"`
	ShipmentID        uuid.UUID `json:"shipment_id"`
	ShipmentNumber    string    `json:"shipment_number"`
	ItemsLoaded       int64     `json:"items_loaded"`
	VehicleCapacity   int64     `json:"vehicle_capacity"`
}

// NewShipmentAllocatedEvent creates a new ShipmentAllocatedEvent
func NewShipmentAllocatedEvent(f *Fulfillment, s *Shipment) *ShipmentAllocatedEvent {
	return &ShipmentAllocatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeShipmentAllocated, aggregateTypeFulfillment, f.ID),
		FulfillmentNumber: f.FulfillmentNumber,
		ShipmentID:        s.ID,
		ShipmentNumber:    s.ShipmentNumber,
		ItemsLoaded:       s.ItemsLoaded(),
		VehicleCapacity:   s.VehicleCapacity,
	}
}

// ShipmentDeliveredEvent is emitted when a shipment's deliveries were applied to stock
type ShipmentDeliveredEvent struct {
	shared.BaseDomainEvent
	FulfillmentNumber string    `json:"fulfillment_number"`
	ShipmentID        uuid.UUID `json:"shipment_id"`
	ShipmentNumber    string    `json:"shipment_number"`
	ItemsDelivered    int64     `json:"items_delivered"`
	DestinationBranch uuid.UUID `json:"destination_branch"`
}

// NewShipmentDeliveredEvent creates a new ShipmentDeliveredEvent
func NewShipmentDeliveredEvent(f *Fulfillment, s *Shipment) *ShipmentDeliveredEvent {
	return &ShipmentDeliveredEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeShipmentDelivered, aggregateTypeFulfillment, f.ID),
		FulfillmentNumber: f.FulfillmentNumber,
		ShipmentID:        s.ID,
		ShipmentNumber:    s.ShipmentNumber,
		ItemsDelivered:    s.ItemsLoaded(),
		DestinationBranch: f.DestinationBranchID,
	}
}

// PaymentConfirmedEvent is emitted when a collection reaches COMPLETED
type PaymentConfirmedEvent struct {
	shared.BaseDomainEvent
	FulfillmentNumber string          `json:"fulfillment_number"`
	PaymentID         uuid.UUID       `json:"payment_id"`
	PaymentNumber     string          `json:"payment_number"`
	Amount            decimal.Decimal `json:"amount"`
	Method            PaymentMethod   `json:"method"`
}

// NewPaymentConfirmedEvent creates a new PaymentConfirmedEvent
func NewPaymentConfirmedEvent(f *Fulfillment, p *PaymentCollection) *PaymentConfirmedEvent {
	return &PaymentConfirmedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypePaymentConfirmed, aggregateTypeFulfillment, f.ID),
		FulfillmentNumber: f.FulfillmentNumber,
		PaymentID:         p.ID,
		PaymentNumber:     p.PaymentNumber,
		Amount:            p.Amount,
		Method:            p.Method,
	}
}

// PaymentDepositedEvent is emitted when collected cash reaches a branch account
type PaymentDepositedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
	BranchID      uuid.UUID       `json:"branch_id"`
}

// NewPaymentDepositedEvent creates a new PaymentDepositedEvent
func NewPaymentDepositedEvent(f *Fulfillment, p *PaymentCollection, branchID uuid.UUID) *PaymentDepositedEvent {
	return &PaymentDepositedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentDeposited, aggregateTypeFulfillment, f.ID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		Amount:          p.Amount,
		BranchID:        branchID,
	}
}
