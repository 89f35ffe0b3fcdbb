package stock

import (
	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock represents the on-hand position of one product at one branch.
// It is the aggregate root for stock operations; the composite identifier
// is BranchID + ProductID. Quantity is mutated exclusively through the
// Ledger applying StockMovement entries, never directly by callers.
type Stock struct {
	shared.BaseAggregateRoot
	BranchID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_branch_product,priority:1"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_branch_product,priority:2"`
	Quantity     int64           `gorm:"not null;default:0"`
	ReorderLevel int64           `gorm:"not null;default:10"`          // Minimum stock threshold for alerts
	AvgUnitCost  decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"` // Moving weighted average purchase cost
}

// TableName returns the table name for GORM
func (Stock) TableName() string {
	return "stocks"
}

// NewStock creates a new stock position for a branch-product combination
func NewStock(branchID, productID uuid.UUID) (*Stock, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	return &Stock{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BranchID:          branchID,
		ProductID:         productID,
		Quantity:          0,
		ReorderLevel:      10,
		AvgUnitCost:       decimal.Zero,
	}, nil
}

// Increase adds quantity to the on-hand balance. Cost basis is unchanged;
// receipts that carry a purchase price go through Receive instead.
func (s *Stock) Increase(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	s.Quantity += quantity
	s.IncrementVersion()

	return nil
}

// Decrease removes quantity from the on-hand balance.
// Fails with INSUFFICIENT_STOCK if the balance would go negative; the ledger
// re-validates even when callers have already checked availability.
func (s *Stock) Decrease(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if s.Quantity < quantity {
		return shared.ErrInsufficientStock
	}

	s.Quantity -= quantity
	s.IncrementVersion()

	if s.IsLowStock() {
		s.AddDomainEvent(NewStockBelowReorderLevelEvent(s))
	}

	return nil
}

// AdjustBy applies a signed delta directly, used for shrinkage, loss and
// count corrections. Negative adjustments emit the event consumed by the
// expense-posting collaborator.
func (s *Stock) AdjustBy(delta int64, reason string) error {
	if delta == 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjustment delta cannot be zero")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}
	if s.Quantity+delta < 0 {
		return shared.ErrInsufficientStock
	}

	oldQuantity := s.Quantity
	s.Quantity += delta
	s.IncrementVersion()

	s.AddDomainEvent(NewStockAdjustedEvent(s, oldQuantity, delta, reason))

	if s.IsLowStock() {
		s.AddDomainEvent(NewStockBelowReorderLevelEvent(s))
	}

	return nil
}

// Receive adds quantity at a purchase price and recalculates the moving
// weighted average cost. Must run as a single read-modify-write under the
// stock row's lock.
func (s *Stock) Receive(quantity int64, unitCost valueobject.Money) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	oldCost := s.AvgUnitCost

	// New Cost = (Old Qty * Old Cost + New Qty * New Cost) / (Old Qty + New Qty)
	// A zero position resets the cost basis to the incoming price.
	if s.Quantity == 0 {
		s.AvgUnitCost = unitCost.Amount()
	} else {
		oldQty := decimal.NewFromInt(s.Quantity)
		newQty := decimal.NewFromInt(quantity)
		totalValue := oldQty.Mul(oldCost).Add(newQty.Mul(unitCost.Amount()))
		s.AvgUnitCost = totalValue.Div(oldQty.Add(newQty)).Round(4)
	}

	s.Quantity += quantity
	s.IncrementVersion()

	s.AddDomainEvent(NewStockReceivedEvent(s, quantity, unitCost.Amount()))

	if !oldCost.Equal(s.AvgUnitCost) {
		s.AddDomainEvent(NewStockCostChangedEvent(s, oldCost, s.AvgUnitCost))
	}

	return nil
}

// SetReorderLevel sets the minimum stock threshold for alerts
func (s *Stock) SetReorderLevel(level int64) error {
	if level < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Reorder level cannot be negative")
	}

	s.ReorderLevel = level
	s.IncrementVersion()

	return nil
}

// IsLowStock returns true if the on-hand quantity is at or below the reorder level
func (s *Stock) IsLowStock() bool {
	return s.Quantity <= s.ReorderLevel
}

// TotalValue returns the total position value (quantity * average cost)
func (s *Stock) TotalValue() valueobject.Money {
	return valueobject.NewMoneyUSD(decimal.NewFromInt(s.Quantity).Mul(s.AvgUnitCost))
}

// CanFulfill returns true if the on-hand quantity covers the requested quantity
func (s *Stock) CanFulfill(quantity int64) bool {
	return s.Quantity >= quantity
}
