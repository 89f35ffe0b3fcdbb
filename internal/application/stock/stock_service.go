package stock

import (
	"context"
	"strings"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/shared/valueobject"
	"github.com/distroerp/backend/internal/domain/stock"
	"github.com/google/uuid"
)

// StockService handles stock ledger operations. Every mutation runs inside
// one transaction scope so the movement row and the balance change commit or
// roll back together, and positions are locked for the duration.
type StockService struct {
	stockRepo      stock.StockRepository
	movementRepo   stock.StockMovementRepository
	txScope        TransactionScope
	ledger         *stock.Ledger
	eventPublisher shared.EventPublisher
}

// NewStockService creates a new StockService
func NewStockService(
	stockRepo stock.StockRepository,
	movementRepo stock.StockMovementRepository,
	txScope TransactionScope,
) *StockService {
	return &StockService{
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		txScope:      txScope,
		ledger:       stock.NewLedger(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Receive records an inbound receipt with a purchase price and updates the
// weighted average cost under the position's row lock.
func (s *StockService) Receive(ctx context.Context, req ReceiveStockRequest) (*StockResponse, error) {
	unitCost, err := valueobject.NewMoneyUSDFromString(req.UnitCost)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost must be a valid decimal")
	}

	var position *stock.Stock
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		position, err = repos.StockRepo().GetOrCreateForUpdate(ctx, req.BranchID, req.ProductID)
		if err != nil {
			return err
		}

		movement, err := stock.NewStockMovement(position.ID, req.BranchID, req.ProductID, stock.MovementTypeIn, req.Quantity)
		if err != nil {
			return err
		}
		movement.WithReference(req.Reference).WithNotes(req.Notes)

		if err := position.Receive(req.Quantity, unitCost); err != nil {
			return err
		}
		if err := movement.MarkApplied(); err != nil {
			return err
		}

		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}
		return repos.StockRepo().SaveWithLock(ctx, position)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, position)

	resp := ToStockResponse(position)
	return &resp, nil
}

// Issue records an outbound movement (OUT, or SALE when the goods went to a
// customer) and decrements the balance, failing when it would go negative.
func (s *StockService) Issue(ctx context.Context, req IssueStockRequest) (*StockResponse, error) {
	movementType := stock.MovementTypeOut
	if req.Sale {
		movementType = stock.MovementTypeSale
	}

	var position *stock.Stock
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		position, err = repos.StockRepo().FindByBranchAndProductForUpdate(ctx, req.BranchID, req.ProductID)
		if err != nil {
			return err
		}

		movement, err := stock.NewStockMovement(position.ID, req.BranchID, req.ProductID, movementType, req.Quantity)
		if err != nil {
			return err
		}
		movement.WithReference(req.Reference).WithNotes(req.Notes)

		if err := s.ledger.Apply(movement, position, nil); err != nil {
			return err
		}

		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}
		return repos.StockRepo().SaveWithLock(ctx, position)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, position)

	resp := ToStockResponse(position)
	return &resp, nil
}

// Transfer moves stock between two branches as one atomic unit: the source
// debit and destination credit either both happen or neither does. Rows are
// locked in a stable order so opposing transfers cannot deadlock.
func (s *StockService) Transfer(ctx context.Context, req TransferStockRequest) (*TransferResponse, error) {
	if req.FromBranchID == req.ToBranchID {
		return nil, shared.NewDomainError("INVALID_DESTINATION", "Source and destination branch must differ")
	}

	var source, target *stock.Stock
	var movement *stock.StockMovement
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		source, target, err = s.lockTransferPair(ctx, repos.StockRepo(), req)
		if err != nil {
			return err
		}

		movement, err = stock.NewStockMovement(source.ID, req.FromBranchID, req.ProductID, stock.MovementTypeTransfer, req.Quantity)
		if err != nil {
			return err
		}
		movement.WithBranches(&req.FromBranchID, &req.ToBranchID).
			WithReference(req.Reference).
			WithNotes(req.Notes)

		if err := s.ledger.Apply(movement, source, target); err != nil {
			return err
		}

		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}
		if err := repos.StockRepo().SaveWithLock(ctx, source); err != nil {
			return err
		}
		return repos.StockRepo().SaveWithLock(ctx, target)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, source)
	s.publishEvents(ctx, target)

	return &TransferResponse{
		Movement: ToMovementResponse(movement),
		Source:   ToStockResponse(source),
		Target:   ToStockResponse(target),
	}, nil
}

// lockTransferPair locks both positions ordered by their (branch, product)
// key so two opposing transfers always acquire locks in the same order.
func (s *StockService) lockTransferPair(ctx context.Context, repo stock.StockRepository, req TransferStockRequest) (source, target *stock.Stock, err error) {
	fromKey := req.FromBranchID.String() + ":" + req.ProductID.String()
	toKey := req.ToBranchID.String() + ":" + req.ProductID.String()

	if strings.Compare(fromKey, toKey) < 0 {
		source, err = repo.FindByBranchAndProductForUpdate(ctx, req.FromBranchID, req.ProductID)
		if err != nil {
			return nil, nil, err
		}
		target, err = repo.GetOrCreateForUpdate(ctx, req.ToBranchID, req.ProductID)
	} else {
		target, err = repo.GetOrCreateForUpdate(ctx, req.ToBranchID, req.ProductID)
		if err != nil {
			return nil, nil, err
		}
		source, err = repo.FindByBranchAndProductForUpdate(ctx, req.FromBranchID, req.ProductID)
	}
	if err != nil {
		return nil, nil, err
	}
	return source, target, nil
}

// Adjust applies a signed correction to a position. Negative deltas emit the
// adjustment event the expense-posting collaborator listens for.
func (s *StockService) Adjust(ctx context.Context, req AdjustStockRequest) (*StockResponse, error) {
	var position *stock.Stock
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		position, err = repos.StockRepo().FindByBranchAndProductForUpdate(ctx, req.BranchID, req.ProductID)
		if err != nil {
			return err
		}

		movement, err := stock.NewStockMovement(position.ID, req.BranchID, req.ProductID, stock.MovementTypeAdjustment, req.Delta)
		if err != nil {
			return err
		}
		movement.WithReference(req.Reference).WithNotes(req.Reason)

		if err := s.ledger.Apply(movement, position, nil); err != nil {
			return err
		}

		if err := repos.MovementRepo().Create(ctx, movement); err != nil {
			return err
		}
		return repos.StockRepo().SaveWithLock(ctx, position)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, position)

	resp := ToStockResponse(position)
	return &resp, nil
}

// SetReorderLevel updates the low-stock threshold of a position
func (s *StockService) SetReorderLevel(ctx context.Context, branchID, productID uuid.UUID, level int64) (*StockResponse, error) {
	position, err := s.stockRepo.FindByBranchAndProduct(ctx, branchID, productID)
	if err != nil {
		return nil, err
	}
	if err := position.SetReorderLevel(level); err != nil {
		return nil, err
	}
	if err := s.stockRepo.Save(ctx, position); err != nil {
		return nil, err
	}

	resp := ToStockResponse(position)
	return &resp, nil
}

// GetPosition returns one stock position
func (s *StockService) GetPosition(ctx context.Context, branchID, productID uuid.UUID) (*StockResponse, error) {
	position, err := s.stockRepo.FindByBranchAndProduct(ctx, branchID, productID)
	if err != nil {
		return nil, err
	}
	resp := ToStockResponse(position)
	return &resp, nil
}

// ListByBranch returns all positions at a branch
func (s *StockService) ListByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]StockResponse, error) {
	positions, err := s.stockRepo.FindByBranch(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]StockResponse, 0, len(positions))
	for i := range positions {
		responses = append(responses, ToStockResponse(&positions[i]))
	}
	return responses, nil
}

// ListLowStock returns positions at or below their reorder level
func (s *StockService) ListLowStock(ctx context.Context, filter shared.Filter) ([]StockResponse, error) {
	positions, err := s.stockRepo.FindBelowReorderLevel(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]StockResponse, 0, len(positions))
	for i := range positions {
		responses = append(responses, ToStockResponse(&positions[i]))
	}
	return responses, nil
}

// ListMovements returns the ledger entries of one position
func (s *StockService) ListMovements(ctx context.Context, branchID, productID uuid.UUID, filter shared.Filter) ([]MovementResponse, error) {
	position, err := s.stockRepo.FindByBranchAndProduct(ctx, branchID, productID)
	if err != nil {
		return nil, err
	}
	movements, err := s.movementRepo.FindByStock(ctx, position.ID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, ToMovementResponse(&movements[i]))
	}
	return responses, nil
}

// publishEvents drains and publishes an aggregate's domain events after the
// transaction committed. Publishing is best-effort: handlers run off the
// critical path and persistence is already durable.
func (s *StockService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	aggregate.ClearDomainEvents()
}
