package fulfillment

import (
	"strings"

	"github.com/distroerp/backend/internal/domain/order"
	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FulfillmentStatus represents the aggregate delivery state of an order
type FulfillmentStatus string

const (
	// FulfillmentStatusPending means nothing has been delivered yet
	FulfillmentStatusPending FulfillmentStatus = "PENDING"
	// FulfillmentStatusPartiallyFulfilled means some but not all items were delivered
	FulfillmentStatusPartiallyFulfilled FulfillmentStatus = "PARTIALLY_FULFILLED"
	// FulfillmentStatusFullyFulfilled means every ordered item was delivered
	FulfillmentStatusFullyFulfilled FulfillmentStatus = "FULLY_FULFILLED"
	// FulfillmentStatusCancelled is set only by explicit cancellation and never derived
	FulfillmentStatusCancelled FulfillmentStatus = "CANCELLED"
)

// String returns the string representation of FulfillmentStatus
func (s FulfillmentStatus) String() string {
	return string(s)
}

// Fulfillment tracks the progress of delivering and getting paid for one
// order. There is exactly one per order, created on demand. Every total on
// it is derived: Recalculate is the only writer, re-run after each shipment
// or payment mutation, and converges because it is a pure function of the
// persisted children.
type Fulfillment struct {
	shared.BaseAggregateRoot
	FulfillmentNumber   string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_fulfillment_number"`
	OrderID             uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_fulfillment_order"`
	DestinationBranchID uuid.UUID         `gorm:"type:uuid;not null;index:idx_fulfillment_dest_branch"` // Branch receiving delivered stock
	OriginBranchID      uuid.UUID         `gorm:"type:uuid;not null"`                                   // Branch the order originated from
	Status              FulfillmentStatus `gorm:"type:varchar(30);not null;default:'PENDING'"`
	TotalItemsOrdered   int64             `gorm:"not null;default:0"`
	TotalItemsFulfilled int64             `gorm:"not null;default:0"`
	TotalItemsRemaining int64             `gorm:"not null;default:0"`
	TotalOrderValue     decimal.Decimal   `gorm:"type:decimal(14,2);not null;default:0"`
	TotalCollected      decimal.Decimal   `gorm:"type:decimal(14,2);not null;default:0"`
	TotalRemaining      decimal.Decimal   `gorm:"type:decimal(14,2);not null;default:0"` // May dip negative on overpayment; display artifact only
	Shipments           []Shipment        `gorm:"foreignKey:FulfillmentID;constraint:OnDelete:CASCADE"`
	Payments            []PaymentCollection `gorm:"foreignKey:FulfillmentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Fulfillment) TableName() string {
	return "fulfillments"
}

// NewFulfillment creates the fulfillment record for a placed order
func NewFulfillment(fulfillmentNumber string, o *order.Order, originBranchID, destinationBranchID uuid.UUID) (*Fulfillment, error) {
	if strings.TrimSpace(fulfillmentNumber) == "" {
		return nil, shared.NewDomainError("INVALID_FULFILLMENT_NUMBER", "Fulfillment number cannot be empty")
	}
	if o == nil {
		return nil, shared.ErrInvalidInput
	}
	if !o.IsPlaced() {
		return nil, shared.NewDomainError("ORDER_NOT_PLACED", "Fulfillment requires a placed order")
	}
	if originBranchID == uuid.Nil || destinationBranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}

	f := &Fulfillment{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		FulfillmentNumber:   fulfillmentNumber,
		OrderID:             o.ID,
		DestinationBranchID: destinationBranchID,
		OriginBranchID:      originBranchID,
		Status:              FulfillmentStatusPending,
		TotalItemsOrdered:   o.TotalQuantity(),
		TotalItemsRemaining: o.TotalQuantity(),
		TotalOrderValue:     o.TotalAmount(),
		TotalRemaining:      o.TotalAmount(),
		TotalCollected:      decimal.Zero,
		Shipments:           []Shipment{},
		Payments:            []PaymentCollection{},
	}

	f.AddDomainEvent(NewFulfillmentCreatedEvent(f))

	return f, nil
}

// Recalculate recomputes every derived total from the order lines, shipment
// lines and payments passed in. Cancelled shipments contribute nothing;
// every other run, FAILED included, keeps its recorded quantities on the
// books until it is resolved through a stock adjustment. Only COMPLETED
// payments count toward collected money. CANCELLED status is sticky:
// recalculation never resurrects a cancelled fulfillment.
func (f *Fulfillment) Recalculate(lines []order.OrderLine, shipments []Shipment, payments []PaymentCollection) {
	var ordered, fulfilled int64
	orderValue := decimal.Zero
	for _, line := range lines {
		ordered += line.QuantityOrdered
		orderValue = orderValue.Add(line.LineTotal())
	}
	for _, s := range shipments {
		if s.Status == ShipmentStatusCancelled {
			continue
		}
		for _, sl := range s.Lines {
			fulfilled += sl.QuantityDelivered
		}
	}

	collected := decimal.Zero
	for _, p := range payments {
		if p.Status == PaymentStatusCompleted {
			collected = collected.Add(p.Amount)
		}
	}

	f.TotalItemsOrdered = ordered
	f.TotalItemsFulfilled = fulfilled
	f.TotalItemsRemaining = ordered - fulfilled
	f.TotalOrderValue = orderValue
	f.TotalCollected = collected
	f.TotalRemaining = orderValue.Sub(collected)

	if f.Status != FulfillmentStatusCancelled {
		switch {
		case fulfilled == 0:
			f.Status = FulfillmentStatusPending
		case fulfilled == ordered:
			f.Status = FulfillmentStatusFullyFulfilled
		default:
			f.Status = FulfillmentStatusPartiallyFulfilled
		}
	}

	f.IncrementVersion()
}

// Cancel marks the fulfillment cancelled. Sticky: later recalculations keep it.
func (f *Fulfillment) Cancel(reason string) error {
	if f.Status == FulfillmentStatusCancelled {
		return shared.ErrInvalidState
	}
	if f.Status == FulfillmentStatusFullyFulfilled {
		return shared.NewDomainError("ALREADY_FULFILLED", "Cannot cancel a fully fulfilled order")
	}

	f.Status = FulfillmentStatusCancelled
	f.IncrementVersion()

	f.AddDomainEvent(NewFulfillmentCancelledEvent(f, reason))

	return nil
}

// FulfillmentPercentage returns delivered progress as a percentage.
// Zero when nothing was ordered rather than a division error.
func (f *Fulfillment) FulfillmentPercentage() decimal.Decimal {
	if f.TotalItemsOrdered == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(f.TotalItemsFulfilled).
		Div(decimal.NewFromInt(f.TotalItemsOrdered)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// PaymentPercentage returns collection progress as a percentage.
// Zero when the order has no value rather than a division error.
func (f *Fulfillment) PaymentPercentage() decimal.Decimal {
	if f.TotalOrderValue.IsZero() {
		return decimal.Zero
	}
	return f.TotalCollected.
		Div(f.TotalOrderValue).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// IsFullyPaid returns true once collected money covers the order value
func (f *Fulfillment) IsFullyPaid() bool {
	return f.TotalCollected.GreaterThanOrEqual(f.TotalOrderValue)
}

// IsOpen returns true while deliveries or collections are still expected
func (f *Fulfillment) IsOpen() bool {
	return f.Status == FulfillmentStatusPending || f.Status == FulfillmentStatusPartiallyFulfilled
}
