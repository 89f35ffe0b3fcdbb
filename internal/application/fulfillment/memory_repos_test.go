package fulfillment

import (
	"context"
	"fmt"
	"time"

	domfulfillment "github.com/distroerp/backend/internal/domain/fulfillment"
	"github.com/distroerp/backend/internal/domain/order"
	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/stock"
	"github.com/google/uuid"
)

type memFulfillmentRepo struct {
	items map[uuid.UUID]*domfulfillment.Fulfillment
	seq   int
}

func newMemFulfillmentRepo() *memFulfillmentRepo {
	return &memFulfillmentRepo{items: make(map[uuid.UUID]*domfulfillment.Fulfillment)}
}

func (r *memFulfillmentRepo) FindByID(_ context.Context, id uuid.UUID) (*domfulfillment.Fulfillment, error) {
	if f, ok := r.items[id]; ok {
		return f, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memFulfillmentRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domfulfillment.Fulfillment, error) {
	return r.FindByID(ctx, id)
}

func (r *memFulfillmentRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) (*domfulfillment.Fulfillment, error) {
	for _, f := range r.items {
		if f.OrderID == orderID {
			return f, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memFulfillmentRepo) FindByNumber(_ context.Context, number string) (*domfulfillment.Fulfillment, error) {
	for _, f := range r.items {
		if f.FulfillmentNumber == number {
			return f, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memFulfillmentRepo) FindWithOutstandingBalance(_ context.Context, _ shared.Filter) ([]domfulfillment.Fulfillment, error) {
	var out []domfulfillment.Fulfillment
	for _, f := range r.items {
		if f.TotalRemaining.IsPositive() {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *memFulfillmentRepo) FindAll(_ context.Context, _ shared.Filter) ([]domfulfillment.Fulfillment, error) {
	var out []domfulfillment.Fulfillment
	for _, f := range r.items {
		out = append(out, *f)
	}
	return out, nil
}

func (r *memFulfillmentRepo) Save(_ context.Context, f *domfulfillment.Fulfillment) error {
	r.items[f.ID] = f
	return nil
}

func (r *memFulfillmentRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *memFulfillmentRepo) GenerateFulfillmentNumber(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("FUL-%d-%05d", time.Now().Year(), r.seq), nil
}

type memShipmentRepo struct {
	items map[uuid.UUID]*domfulfillment.Shipment
	seq   int
}

func newMemShipmentRepo() *memShipmentRepo {
	return &memShipmentRepo{items: make(map[uuid.UUID]*domfulfillment.Shipment)}
}

func (r *memShipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*domfulfillment.Shipment, error) {
	if s, ok := r.items[id]; ok {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memShipmentRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domfulfillment.Shipment, error) {
	return r.FindByID(ctx, id)
}

func (r *memShipmentRepo) FindByNumber(_ context.Context, number string) (*domfulfillment.Shipment, error) {
	for _, s := range r.items {
		if s.ShipmentNumber == number {
			return s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memShipmentRepo) FindByFulfillment(_ context.Context, fulfillmentID uuid.UUID) ([]domfulfillment.Shipment, error) {
	var out []domfulfillment.Shipment
	for _, s := range r.items {
		if s.FulfillmentID == fulfillmentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memShipmentRepo) FindInTransit(_ context.Context, _ shared.Filter) ([]domfulfillment.Shipment, error) {
	var out []domfulfillment.Shipment
	for _, s := range r.items {
		if s.Status == domfulfillment.ShipmentStatusInTransit {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memShipmentRepo) Save(_ context.Context, s *domfulfillment.Shipment) error {
	r.items[s.ID] = s
	return nil
}

func (r *memShipmentRepo) GenerateShipmentNumber(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("SHP-%d-%05d", time.Now().Year(), r.seq), nil
}

type memPaymentRepo struct {
	items map[uuid.UUID]*domfulfillment.PaymentCollection
	seq   int
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{items: make(map[uuid.UUID]*domfulfillment.PaymentCollection)}
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*domfulfillment.PaymentCollection, error) {
	if p, ok := r.items[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentRepo) FindByNumber(_ context.Context, number string) (*domfulfillment.PaymentCollection, error) {
	for _, p := range r.items {
		if p.PaymentNumber == number {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentRepo) FindByFulfillment(_ context.Context, fulfillmentID uuid.UUID) ([]domfulfillment.PaymentCollection, error) {
	var out []domfulfillment.PaymentCollection
	for _, p := range r.items {
		if p.FulfillmentID == fulfillmentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) FindOutstanding(_ context.Context, _ shared.Filter) ([]domfulfillment.PaymentCollection, error) {
	var out []domfulfillment.PaymentCollection
	for _, p := range r.items {
		if p.IsOutstanding() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) Save(_ context.Context, p *domfulfillment.PaymentCollection) error {
	r.items[p.ID] = p
	return nil
}

func (r *memPaymentRepo) GeneratePaymentNumber(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("PAY-%d-%05d", time.Now().Year(), r.seq), nil
}

type memOrderRepo struct {
	items map[uuid.UUID]*order.Order
	seq   int
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{items: make(map[uuid.UUID]*order.Order)}
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	if o, ok := r.items[id]; ok {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindByOrderNumber(_ context.Context, orderNumber string) (*order.Order, error) {
	for _, o := range r.items {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindByCustomer(_ context.Context, customerID uuid.UUID, _ shared.Filter) ([]order.Order, error) {
	var out []order.Order
	for _, o := range r.items {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]order.Order, error) {
	var out []order.Order
	for _, o := range r.items {
		out = append(out, *o)
	}
	return out, nil
}

func (r *memOrderRepo) Save(_ context.Context, o *order.Order) error {
	r.items[o.ID] = o
	return nil
}

func (r *memOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.items)), nil
}

func (r *memOrderRepo) GenerateOrderNumber(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("ORD-%d-%05d", time.Now().Year(), r.seq), nil
}

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
