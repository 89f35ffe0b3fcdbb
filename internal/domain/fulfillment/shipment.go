package fulfillment

import (
	"fmt"
	"strings"
	"time"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShipmentStatus represents the state of a delivery run
type ShipmentStatus string

const (
	// ShipmentStatusScheduled means the run is planned but not yet loading
	ShipmentStatusScheduled ShipmentStatus = "SCHEDULED"
	// ShipmentStatusLoading means goods are being loaded onto the vehicle
	ShipmentStatusLoading ShipmentStatus = "LOADING"
	// ShipmentStatusInTransit means the vehicle is on its way
	ShipmentStatusInTransit ShipmentStatus = "IN_TRANSIT"
	// ShipmentStatusDelivered means the full planned load was delivered
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
	// ShipmentStatusPartiallyDelivered means the run ended with part of the load undelivered
	ShipmentStatusPartiallyDelivered ShipmentStatus = "PARTIALLY_DELIVERED"
	// ShipmentStatusFailed means the run ended without delivering
	ShipmentStatusFailed ShipmentStatus = "FAILED"
	// ShipmentStatusCancelled means the run was called off before a terminal outcome
	ShipmentStatusCancelled ShipmentStatus = "CANCELLED"
)

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states that end the shipment lifecycle
func (s ShipmentStatus) IsTerminal() bool {
	switch s {
	case ShipmentStatusDelivered, ShipmentStatusPartiallyDelivered, ShipmentStatusFailed, ShipmentStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo returns true if the status transition is allowed.
// Cancellation is reachable from any non-terminal state.
func (s ShipmentStatus) CanTransitionTo(target ShipmentStatus) bool {
	if target == ShipmentStatusCancelled {
		return !s.IsTerminal()
	}
	allowed := map[ShipmentStatus][]ShipmentStatus{
		ShipmentStatusScheduled: {ShipmentStatusLoading},
		ShipmentStatusLoading:   {ShipmentStatusInTransit},
		ShipmentStatusInTransit: {ShipmentStatusDelivered, ShipmentStatusPartiallyDelivered, ShipmentStatusFailed},
	}
	for _, t := range allowed[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Shipment is one capacity-bounded delivery run against a fulfillment. Its
// lines carry the planned (and, once delivered, confirmed) quantities; the
// loaded total is always recomputed from the lines, never stored on its own.
type Shipment struct {
	shared.BaseEntity
	FulfillmentID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_shipment_fulfillment"`
	ShipmentNumber  string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_shipment_number"`
	VehicleCapacity int64          `gorm:"not null"` // Max units the vehicle can carry
	Status          ShipmentStatus `gorm:"type:varchar(30);not null;default:'SCHEDULED';index:idx_shipment_status"`
	TripID          *uuid.UUID     `gorm:"type:uuid"` // Optional link to a physical trip record
	ScheduledAt     *time.Time     `gorm:"type:timestamptz"`
	DeliveredAt     *time.Time     `gorm:"type:timestamptz"`
	ActualsRecorded bool           `gorm:"not null;default:false"` // Line quantities corrected to what actually arrived
	StockAssigned   bool           `gorm:"not null;default:false"` // Delivery finalization at-most-once guard
	StockAssignedAt *time.Time     `gorm:"type:timestamptz"`
	Notes           string         `gorm:"type:text"`
	Lines           []ShipmentLine `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Shipment) TableName() string {
	return "shipments"
}

// ShipmentLine is the portion of one order line carried in one shipment.
// Only the delivered quantity is stored; the remaining quantity for an
// order line is derived from its sibling shipment lines so it can never
// drift out of sync.
type ShipmentLine struct {
	shared.BaseEntity
	ShipmentID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_shipment_line_shipment"`
	OrderLineID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_shipment_line_order_line"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName       string          `gorm:"type:varchar(255);not null"` // Snapshot for delivery documents
	QuantityDelivered int64           `gorm:"not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (ShipmentLine) TableName() string {
	return "shipment_lines"
}

// LineValue returns quantity * unit price for this line
func (l *ShipmentLine) LineValue() decimal.Decimal {
	return decimal.NewFromInt(l.QuantityDelivered).Mul(l.UnitPrice)
}

// NewShipment creates a scheduled shipment. Lines are attached by the
// allocator, which enforces over-allocation and capacity rules.
func NewShipment(shipmentNumber string, fulfillmentID uuid.UUID, vehicleCapacity int64) (*Shipment, error) {
	if strings.TrimSpace(shipmentNumber) == "" {
		return nil, shared.NewDomainError("INVALID_SHIPMENT_NUMBER", "Shipment number cannot be empty")
	}
	if fulfillmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FULFILLMENT", "Fulfillment ID cannot be empty")
	}
	if vehicleCapacity <= 0 {
		return nil, shared.NewDomainError("INVALID_CAPACITY", "Vehicle capacity must be positive")
	}

	return &Shipment{
		BaseEntity:      shared.NewBaseEntity(),
		FulfillmentID:   fulfillmentID,
		ShipmentNumber:  shipmentNumber,
		VehicleCapacity: vehicleCapacity,
		Status:          ShipmentStatusScheduled,
		Lines:           []ShipmentLine{},
	}, nil
}

// Schedule sets the planned delivery time
func (s *Shipment) Schedule(at time.Time) error {
	if s.Status.IsTerminal() {
		return shared.ErrInvalidState
	}

	s.ScheduledAt = &at
	s.Touch()
	return nil
}

// AttachTrip links the shipment to a physical trip record
func (s *Shipment) AttachTrip(tripID uuid.UUID) error {
	if tripID == uuid.Nil {
		return shared.NewDomainError("INVALID_TRIP", "Trip ID cannot be empty")
	}

	s.TripID = &tripID
	s.Touch()
	return nil
}

// ItemsLoaded returns the sum of delivered quantities across all lines.
// Always recomputed from the lines.
func (s *Shipment) ItemsLoaded() int64 {
	var total int64
	for _, line := range s.Lines {
		total += line.QuantityDelivered
	}
	return total
}

// TotalValue returns the monetary value of the load
func (s *Shipment) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.LineValue())
	}
	return total
}

// TransitionTo moves the shipment through its status machine.
// Fails with INVALID_TRANSITION when the machine does not permit the move.
func (s *Shipment) TransitionTo(target ShipmentStatus) error {
	if !s.Status.CanTransitionTo(target) {
		return shared.ErrInvalidTransition
	}

	s.Status = target
	if target == ShipmentStatusDelivered || target == ShipmentStatusPartiallyDelivered {
		now := time.Now()
		s.DeliveredAt = &now
	}
	s.Touch()
	return nil
}

// IsDelivered returns true when the run ended with goods delivered
func (s *Shipment) IsDelivered() bool {
	return s.Status == ShipmentStatusDelivered || s.Status == ShipmentStatusPartiallyDelivered
}

// RecordActualDelivery corrects the line quantities of a partially
// delivered run down to what the customer actually received. Quantities
// are keyed by shipment line ID; lines not mentioned keep their planned
// quantity. A fully DELIVERED run needs no correction.
func (s *Shipment) RecordActualDelivery(actuals map[uuid.UUID]int64) error {
	if s.Status != ShipmentStatusPartiallyDelivered {
		return shared.NewDomainError("NOT_PARTIALLY_DELIVERED", "Actual quantities apply only to a partially delivered shipment")
	}
	if s.StockAssigned {
		return shared.NewDomainError("STOCK_ASSIGNED", "Quantities are frozen once applied to stock")
	}
	if len(actuals) == 0 {
		return shared.NewDomainError("EMPTY_ACTUALS", "At least one line quantity is required")
	}

	linesByID := make(map[uuid.UUID]*ShipmentLine, len(s.Lines))
	for i := range s.Lines {
		linesByID[s.Lines[i].ID] = &s.Lines[i]
	}
	for lineID, qty := range actuals {
		line, ok := linesByID[lineID]
		if !ok {
			return shared.ErrNotFound
		}
		if qty < 0 || qty > line.QuantityDelivered {
			return shared.NewDomainError("INVALID_QUANTITY",
				fmt.Sprintf("Actual quantity for %q must be between 0 and the planned %d", line.ProductName, line.QuantityDelivered))
		}
	}
	for lineID, qty := range actuals {
		line := linesByID[lineID]
		line.QuantityDelivered = qty
		line.Touch()
	}

	s.ActualsRecorded = true
	s.Touch()
	return nil
}

// MarkStockAssigned flags the shipment's deliveries as applied to stock.
// The flag is the idempotency guard for delivery finalization: movements
// alone cannot distinguish a re-run, so the marker lives on the shipment.
// A partially delivered run must have its actual quantities recorded
// first, otherwise the planned load would be credited for goods that
// never arrived.
func (s *Shipment) MarkStockAssigned() error {
	switch s.Status {
	case ShipmentStatusDelivered:
	case ShipmentStatusPartiallyDelivered:
		if !s.ActualsRecorded {
			return shared.NewDomainError("ACTUALS_NOT_RECORDED", "Record actual delivered quantities before assigning stock")
		}
	default:
		return shared.NewDomainError("NOT_DELIVERED", "Stock can only be assigned for a delivered shipment")
	}
	if s.StockAssigned {
		return shared.ErrDuplicateApplication
	}

	now := time.Now()
	s.StockAssigned = true
	s.StockAssignedAt = &now
	s.Touch()
	return nil
}
