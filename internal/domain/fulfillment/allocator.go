package fulfillment

import (
	"fmt"

	"github.com/distroerp/backend/internal/domain/order"
	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AllocationRequest asks for a quantity of one order line to be put on the
// next shipment.
type AllocationRequest struct {
	OrderLineID uuid.UUID
	Quantity    int64
}

// Allocator splits a fulfillment's outstanding items across successive
// capacity-constrained shipments. Over-capacity requests are rejected
// outright, never silently truncated; the caller decides whether to retry
// with a smaller load.
type Allocator struct{}

// NewAllocator creates a new Allocator domain service
func NewAllocator() *Allocator {
	return &Allocator{}
}

// DeliveredByOrderLine sums delivered quantities per order line across all
// non-cancelled shipments. This is the authoritative "already delivered"
// figure; nothing stores it redundantly. Only cancellation releases a
/// shipment's quantities: a FAILED run keeps its recorded load on the
// books until the loss is resolved through a stock adjustment.
func DeliveredByOrderLine(shipments []Shipment) map[uuid.UUID]int64 {
	delivered := make(map[uuid.UUID]int64)
	for _, s := range shipments {
		if s.Status == ShipmentStatusCancelled {
			continue
		}
		for _, line := range s.Lines {
			delivered[line.OrderLineID] += line.QuantityDelivered
		}
	}
	return delivered
}

// RemainingForLine returns how much of one order line is still undelivered
// given the fulfillment's existing shipments.
func RemainingForLine(line *order.OrderLine, shipments []Shipment) int64 {
	return line.QuantityOrdered - DeliveredByOrderLine(shipments)[line.ID]
}

// Allocate builds a new shipment from the requested lines. For every request
// it checks that the quantity fits in what the order line still has
// undelivered across ALL existing shipments of the fulfillment, and that the
// total load fits the vehicle. The quantity on each created line is the
// planned load; physical confirmation happens at delivery finalization.
func (a *Allocator) Allocate(
	shipmentNumber string,
	f *Fulfillment,
	orderLines []order.OrderLine,
	existingShipments []Shipment,
	vehicleCapacity int64,
	requests []AllocationRequest,
) (*Shipment, error) {
	if f == nil {
		return nil, shared.ErrInvalidInput
	}
	if f.Status == FulfillmentStatusCancelled {
		return nil, shared.ErrInvalidState
	}
	if len(requests) == 0 {
		return nil, shared.NewDomainError("EMPTY_ALLOCATION", "Allocation requires at least one line")
	}

	linesByID := make(map[uuid.UUID]*order.OrderLine, len(orderLines))
	for i := range orderLines {
		linesByID[orderLines[i].ID] = &orderLines[i]
	}
	delivered := DeliveredByOrderLine(existingShipments)

	var totalRequested int64
	seen := make(map[uuid.UUID]bool, len(requests))
	for _, req := range requests {
		if req.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
		}
		if seen[req.OrderLineID] {
			return nil, shared.NewDomainError("DUPLICATE_LINE", "Order line requested twice in one allocation")
		}
		seen[req.OrderLineID] = true

		line, ok := linesByID[req.OrderLineID]
		if !ok {
			return nil, shared.ErrNotFound
		}

		available := line.QuantityOrdered - delivered[line.ID]
		if req.Quantity > available {
			return nil, shared.NewDomainError("OVER_ALLOCATION",
				fmt.Sprintf("Requested %d of %q but only %d remain undelivered", req.Quantity, line.ProductName, available))
		}

		totalRequested += req.Quantity
	}

	if totalRequested > vehicleCapacity {
		return nil, shared.NewDomainError("CAPACITY_EXCEEDED",
			fmt.Sprintf("Requested load %d exceeds vehicle capacity %d", totalRequested, vehicleCapacity))
	}

	shipment, err := NewShipment(shipmentNumber, f.ID, vehicleCapacity)
	if err != nil {
		return nil, err
	}

	for _, req := range requests {
		line := linesByID[req.OrderLineID]
		shipment.Lines = append(shipment.Lines, ShipmentLine{
			BaseEntity:        shared.NewBaseEntity(),
			ShipmentID:        shipment.ID,
			OrderLineID:       line.ID,
			ProductID:         line.ProductID,
			ProductName:       line.ProductName,
			QuantityDelivered: req.Quantity,
			UnitPrice:         line.UnitPrice,
		})
	}

	return shipment, nil
}
