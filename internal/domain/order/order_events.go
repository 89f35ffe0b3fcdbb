package order

import (
	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for the order context
const (
	EventTypeOrderPlaced    = "order.placed"
	EventTypeOrderCancelled = "order.cancelled"
)

const aggregateTypeOrder = "Order"

// OrderPlacedEvent is emitted when an order is confirmed
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	LineCount   int             `json:"line_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		LineCount:       len(o.Lines),
		TotalAmount:     o.TotalAmount(),
	}
}

// OrderCancelledEvent is emitted when an order is withdrawn
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, aggregateTypeOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		Reason:          reason,
	}
}
