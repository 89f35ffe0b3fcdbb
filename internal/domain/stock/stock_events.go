package stock

import (
	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for the stock context
const (
	EventTypeStockReceived          = "stock.received"
	EventTypeStockAdjusted          = "stock.adjusted"
	EventTypeStockCostChanged       = "stock.cost_changed"
	EventTypeStockBelowReorderLevel = "stock.below_reorder_level"
)

const aggregateTypeStock = "Stock"

// StockReceivedEvent is emitted when stock arrives with a purchase price
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	BranchID  uuid.UUID       `json:"branch_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent
func NewStockReceivedEvent(s *Stock, quantity int64, unitCost decimal.Decimal) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, aggregateTypeStock, s.ID),
		BranchID:        s.BranchID,
		ProductID:       s.ProductID,
		Quantity:        quantity,
		UnitCost:        unitCost,
	}
}

// StockAdjustedEvent is emitted for signed corrections. Negative deltas feed
// the loss-expense collaborator.
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	BranchID    uuid.UUID       `json:"branch_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	OldQuantity int64           `json:"old_quantity"`
	NewQuantity int64           `json:"new_quantity"`
	Delta       int64           `json:"delta"`
	Reason      string          `json:"reason"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(s *Stock, oldQuantity, delta int64, reason string) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, aggregateTypeStock, s.ID),
		BranchID:        s.BranchID,
		ProductID:       s.ProductID,
		OldQuantity:     oldQuantity,
		NewQuantity:     s.Quantity,
		Delta:           delta,
		Reason:          reason,
		UnitCost:        s.AvgUnitCost,
	}
}

// StockCostChangedEvent is emitted when a receipt moves the weighted average cost
type StockCostChangedEvent struct {
	shared.BaseDomainEvent
	BranchID  uuid.UUID       `json:"branch_id"`
	ProductID uuid.UUID       `json:"product_id"`
	OldCost   decimal.Decimal `json:"old_cost"`
	NewCost   decimal.Decimal `json:"new_cost"`
}

// NewStockCostChangedEvent creates a new StockCostChangedEvent
func NewStockCostChangedEvent(s *Stock, oldCost, newCost decimal.Decimal) *StockCostChangedEvent {
	return &StockCostChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCostChanged, aggregateTypeStock, s.ID),
		BranchID:        s.BranchID,
		ProductID:       s.ProductID,
		OldCost:         oldCost,
		NewCost:         newCost,
	}
}

// StockBelowReorderLevelEvent is emitted when a position drops to or below
// its reorder level
type StockBelowReorderLevelEvent struct {
	shared.BaseDomainEvent
	BranchID     uuid.UUID `json:"branch_id"`
	ProductID    uuid.UUID `json:"product_id"`
	Quantity     int64     `json:"quantity"`
	ReorderLevel int64     `json:"reorder_level"`
}

// NewStockBelowReorderLevelEvent creates a new StockBelowReorderLevelEvent
func NewStockBelowReorderLevelEvent(s *Stock) *StockBelowReorderLevelEvent {
	return &StockBelowReorderLevelEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowReorderLevel, aggregateTypeStock, s.ID),
		BranchID:        s.BranchID,
		ProductID:       s.ProductID,
		Quantity:        s.Quantity,
		ReorderLevel:    s.ReorderLevel,
	}
}
