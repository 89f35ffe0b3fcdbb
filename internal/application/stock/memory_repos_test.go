package stock

import (
	"context"
	"time"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/stock"
	"github.com/google/uuid"
)

// memStockRepo is an in-memory StockRepository for service tests
type memStockRepo struct {
	positions map[uuid.UUID]*stock.Stock
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{positions: make(map[uuid.UUID]*stock.Stock)}
}

func (r *memStockRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.Stock, error) {
	if s, ok := r.positions[id]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memStockRepo) FindByBranchAndProduct(_ context.Context, branchID, productID uuid.UUID) (*stock.Stock, error) {
	for _, s := range r.positions {
		if s.BranchID == branchID && s.ProductID == productID {
			return s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memStockRepo) FindByBranchAndProductForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*stock.Stock, error) {
	return r.FindByBranchAndProduct(ctx, branchID, productID)
}

func (r *memStockRepo) GetOrCreate(ctx context.Context, branchID, productID uuid.UUID) (*stock.Stock, error) {
	if s, err := r.FindByBranchAndProduct(ctx, branchID, productID); err == nil {
		return s, nil
	}
	s, err := stock.NewStock(branchID, productID)
	if err != nil {
		return nil, err
	}
	r.positions[s.ID] = s
	return s, nil
}

func (r *memStockRepo) GetOrCreateForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*stock.Stock, error) {
	return r.GetOrCreate(ctx, branchID, productID)
}

func (r *memStockRepo) FindByBranch(_ context.Context, branchID uuid.UUID, _ shared.Filter) ([]stock.Stock, error) {
	var out []stock.Stock
	for _, s := range r.positions {
		if s.BranchID == branchID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memStockRepo) FindBelowReorderLevel(_ context.Context, _ shared.Filter) ([]stock.Stock, error) {
	var out []stock.Stock
	for _, s := range r.positions {
		if s.IsLowStock() {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memStockRepo) Save(_ context.Context, s *stock.Stock) error {
	r.positions[s.ID] = s
	return nil
}

func (r *memStockRepo) SaveWithLock(ctx context.Context, s *stock.Stock) error {
	return r.Save(ctx, s)
}

func (r *memStockRepo) CountByBranch(_ context.Context, branchID uuid.UUID) (int64, error) {
	var n int64
	for _, s := range r.positions {
		if s.BranchID == branchID {
			n++
		}
	}
	return n, nil
}

// memMovementRepo is an in-memory StockMovementRepository for service tests
type memMovementRepo struct {
	movements map[uuid.UUID]*stock.StockMovement
}

func newMemMovementRepo() *memMovementRepo {
	return &memMovementRepo{movements: make(map[uuid.UUID]*stock.StockMovement)}
}

func (r *memMovementRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.StockMovement, error) {
	if m, ok := r.movements[id]; ok {
		return m, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memMovementRepo) FindByStock(_ context.Context, stockID uuid.UUID, _ shared.Filter) ([]stock.StockMovement, error) {
	var out []stock.StockMovement
	for _, m := range r.movements {
		if m.StockID == stockID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) FindByReference(_ context.Context, reference string) ([]stock.StockMovement, error) {
	var out []stock.StockMovement
	for _, m := range r.movements {
		if m.Reference == reference {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) FindByDateRange(_ context.Context, branchID uuid.UUID, start, end time.Time, _ shared.Filter) ([]stock.StockMovement, error) {
	var out []stock.StockMovement
	for _, m := range r.movements {
		if m.BranchID == branchID && !m.CreatedAt.Before(start) && !m.CreatedAt.After(end) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) Create(_ context.Context, m *stock.StockMovement) error {
	if _, exists := r.movements[m.ID]; exists {
		return shared.ErrAlreadyExists
	}
	r.movements[m.ID] = m
	return nil
}

func (r *memMovementRepo) Update(_ context.Context, m *stock.StockMovement) error {
	if _, exists := r.movements[m.ID]; !exists {
		return shared.ErrNotFound
	}
	r.movements[m.ID] = m
	return nil
}

func (r *memMovementRepo) CountByStock(_ context.Context, stockID uuid.UUID) (int64, error) {
	var n int64
	for _, m := range r.movements {
		if m.StockID == stockID {
			n++
		}
	}
	return n, nil
}
