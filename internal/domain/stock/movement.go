package stock

import (
	"time"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	// MovementTypeIn represents stock coming into a branch (purchase receiving, delivery)
	MovementTypeIn MovementType = "IN"
	// MovementTypeOut represents stock leaving a branch
	MovementTypeOut MovementType = "OUT"
	// MovementTypeTransfer represents an inter-branch transfer
	MovementTypeTransfer MovementType = "TRANSFER"
	// MovementTypeAdjustment represents a signed correction (shrinkage, count variance)
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
	// MovementTypeSale represents stock sold to a customer
	MovementTypeSale MovementType = "SALE"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeTransfer, MovementTypeAdjustment, MovementTypeSale:
		return true
	}
	return false
}

// StockMovement is an append-only ledger entry that changes a Stock balance.
// Once applied, movements are immutable - corrections must be made with new
// compensating movements, never in-place edits.
type StockMovement struct {
	shared.BaseEntity
	StockID      uuid.UUID    `gorm:"type:uuid;not null;index:idx_stock_movement_stock"`
	BranchID     uuid.UUID    `gorm:"type:uuid;not null;index:idx_stock_movement_branch"`
	ProductID    uuid.UUID    `gorm:"type:uuid;not null;index:idx_stock_movement_product"`
	MovementType MovementType `gorm:"type:varchar(20);not null;index:idx_stock_movement_type"`
	Quantity     int64        `gorm:"not null"` // Signed for ADJUSTMENT, positive magnitude otherwise
	FromBranchID *uuid.UUID   `gorm:"type:uuid"`
	ToBranchID   *uuid.UUID   `gorm:"type:uuid"`
	Reference    string       `gorm:"type:varchar(100)"` // Source document (e.g. shipment number)
	Notes        string       `gorm:"type:varchar(255)"`
	CreatedByID  *uuid.UUID   `gorm:"type:uuid"`
	Applied      bool         `gorm:"not null;default:false"` // At-most-once application guard
	AppliedAt    *time.Time   `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new unapplied stock movement
func NewStockMovement(stockID, branchID, productID uuid.UUID, movementType MovementType, quantity int64) (*StockMovement, error) {
	if stockID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if quantity == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be zero")
	}
	if movementType != MovementTypeAdjustment && quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Only adjustments may carry a negative quantity")
	}

	return &StockMovement{
		BaseEntity:   shared.NewBaseEntity(),
		StockID:      stockID,
		BranchID:     branchID,
		ProductID:    productID,
		MovementType: movementType,
		Quantity:     quantity,
	}, nil
}

// WithBranches sets the source and destination branches (TRANSFER, delivery IN)
func (m *StockMovement) WithBranches(fromBranchID, toBranchID *uuid.UUID) *StockMovement {
	m.FromBranchID = fromBranchID
	m.ToBranchID = toBranchID
	return m
}

// WithReference sets the source document reference
func (m *StockMovement) WithReference(reference string) *StockMovement {
	m.Reference = reference
	return m
}

// WithNotes sets free-text notes
func (m *StockMovement) WithNotes(notes string) *StockMovement {
	m.Notes = notes
	return m
}

// WithCreatedBy sets the employee who created the movement
func (m *StockMovement) WithCreatedBy(employeeID uuid.UUID) *StockMovement {
	m.CreatedByID = &employeeID
	return m
}

// MarkApplied flags the movement as applied to its stock balance.
// Returns DUPLICATE_APPLICATION when the movement was already applied.
func (m *StockMovement) MarkApplied() error {
	if m.Applied {
		return shared.ErrDuplicateApplication
	}
	now := time.Now()
	m.Applied = true
	m.AppliedAt = &now
	m.Touch()
	return nil
}

// SignedEffect returns the net effect of this movement on its own stock row.
// TRANSFER is negative here; the destination credit is a separate row update
// performed by the ledger in the same transaction.
func (m *StockMovement) SignedEffect() int64 {
	switch m.MovementType {
	case MovementTypeIn:
		return abs(m.Quantity)
	case MovementTypeOut, MovementTypeSale, MovementTypeTransfer:
		return -abs(m.Quantity)
	case MovementTypeAdjustment:
		return m.Quantity
	}
	return 0
}

// IsTransfer returns true for inter-branch transfers
func (m *StockMovement) IsTransfer() bool {
	return m.MovementType == MovementTypeTransfer
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
