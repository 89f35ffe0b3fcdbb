package stock

import (
	"github.com/distroerp/backend/internal/domain/shared"
)

// Ledger is the domain service that applies stock movements to stock
// positions. It enforces at-most-once application and the both-or-neither
// rule for transfers; the caller is responsible for running Apply inside a
// single transaction that holds row locks on every Stock passed in.
type Ledger struct{}

// NewLedger creates a new Ledger domain service
func NewLedger() *Ledger {
	return &Ledger{}
}

// Apply applies one movement to its stock position. For TRANSFER the
// destination stock row must be supplied; the source debit and destination
// credit happen together or not at all. The movement is marked applied on
// success so a re-run fails with DUPLICATE_APPLICATION instead of
// double-counting.
func (l *Ledger) Apply(movement *StockMovement, source *Stock, destination *Stock) error {
	if movement == nil || source == nil {
		return shared.ErrInvalidInput
	}
	if movement.StockID != source.ID {
		return shared.NewDomainError("STOCK_MISMATCH", "Movement does not belong to this stock position")
	}
	if movement.Applied {
		return shared.ErrDuplicateApplication
	}

	switch movement.MovementType {
	case MovementTypeIn:
		if err := source.Increase(abs(movement.Quantity)); err != nil {
			return err
		}
	case MovementTypeOut, MovementTypeSale:
		if err := source.Decrease(abs(movement.Quantity)); err != nil {
			return err
		}
	case MovementTypeTransfer:
		if destination == nil {
			return shared.NewDomainError("INVALID_DESTINATION", "Transfer requires a destination stock position")
		}
		if destination.ProductID != source.ProductID {
			return shared.NewDomainError("PRODUCT_MISMATCH", "Transfer destination holds a different product")
		}
		if destination.ID == source.ID {
			return shared.NewDomainError("INVALID_DESTINATION", "Cannot transfer stock to the same position")
		}
		if err := source.Decrease(abs(movement.Quantity)); err != nil {
			return err
		}
		if err := destination.Increase(abs(movement.Quantity)); err != nil {
			return err
		}
	case MovementTypeAdjustment:
		if err := source.AdjustBy(movement.Quantity, movement.Notes); err != nil {
			return err
		}
	default:
		return shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}

	return movement.MarkApplied()
}
