package stock

import (
	"time"

	"github.com/distroerp/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiveStockRequest records an inbound receipt with a purchase price
type ReceiveStockRequest struct {
	BranchID  uuid.UUID `json:"branch_id" binding:"required"`
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
	UnitCost  string    `json:"unit_cost" binding:"required"`
	Reference string    `json:"reference"`
	Notes     string    `json:"notes"`
}

// IssueStockRequest records an outbound movement (OUT or SALE)
type IssueStockRequest struct {
	BranchID  uuid.UUID `json:"branch_id" binding:"required"`
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
	Sale      bool      `json:"sale"`
	Reference string    `json:"reference"`
	Notes     string    `json:"notes"`
}

// TransferStockRequest moves stock between two branches
type TransferStockRequest struct {
	FromBranchID uuid.UUID `json:"from_branch_id" binding:"required"`
	ToBranchID   uuid.UUID `json:"to_branch_id" binding:"required"`
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	Quantity     int64     `json:"quantity" binding:"required,gt=0"`
	Reference    string    `json:"reference"`
	Notes        string    `json:"notes"`
}

// AdjustStockRequest applies a signed correction
type AdjustStockRequest struct {
	BranchID  uuid.UUID `json:"branch_id" binding:"required"`
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Delta     int64     `json:"delta" binding:"required"`
	Reason    string    `json:"reason" binding:"required"`
	Reference string    `json:"reference"`
}

// StockResponse represents a stock position in API responses
type StockResponse struct {
	ID           uuid.UUID       `json:"id"`
	BranchID     uuid.UUID       `json:"branch_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     int64           `json:"quantity"`
	ReorderLevel int64           `json:"reorder_level"`
	AvgUnitCost  decimal.Decimal `json:"avg_unit_cost"`
	TotalValue   decimal.Decimal `json:"total_value"`
	IsLowStock   bool            `json:"is_low_stock"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ToStockResponse converts a domain Stock to its response shape
func ToStockResponse(s *stock.Stock) StockResponse {
	return StockResponse{
		ID:           s.ID,
		BranchID:     s.BranchID,
		ProductID:    s.ProductID,
		Quantity:     s.Quantity,
		ReorderLevel: s.ReorderLevel,
		AvgUnitCost:  s.AvgUnitCost,
		TotalValue:   s.TotalValue().Amount(),
		IsLowStock:   s.IsLowStock(),
		UpdatedAt:    s.UpdatedAt,
		Version:      s.Version,
	}
}

// MovementResponse represents a ledger entry in API responses
type MovementResponse struct {
	ID           uuid.UUID  `json:"id"`
	StockID      uuid.UUID  `json:"stock_id"`
	BranchID     uuid.UUID  `json:"branch_id"`
	ProductID    uuid.UUID  `json:"product_id"`
	MovementType string     `json:"movement_type"`
	Quantity     int64      `json:"quantity"`
	SignedEffect int64      `json:"signed_effect"`
	FromBranchID *uuid.UUID `json:"from_branch_id,omitempty"`
	ToBranchID   *uuid.UUID `json:"to_branch_id,omitempty"`
	Reference    string     `json:"reference,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Applied      bool       `json:"applied"`
	AppliedAt    *time.Time `json:"applied_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToMovementResponse converts a domain StockMovement to its response shape
func ToMovementResponse(m *stock.StockMovement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		StockID:      m.StockID,
		BranchID:     m.BranchID,
		ProductID:    m.ProductID,
		MovementType: m.MovementType.String(),
		Quantity:     m.Quantity,
		SignedEffect: m.SignedEffect(),
		FromBranchID: m.FromBranchID,
		ToBranchID:   m.ToBranchID,
		Reference:    m.Reference,
		Notes:        m.Notes,
		Applied:      m.Applied,
		AppliedAt:    m.AppliedAt,
		CreatedAt:    m.CreatedAt,
	}
}

// TransferResponse reports both sides of a completed transfer
type TransferResponse struct {
	Movement MovementResponse `json:"movement"`
	Source   StockResponse    `json:"source"`
	Target   StockResponse    `json:"target"`
}
