package order

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distroerp/backend/internal/domain/catalog"
	"github.com/distroerp/backend/internal/domain/order"
	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/shared/valueobject"
)

type memOrderRepo struct {
	orders map[uuid.UUID]*order.Order
	seq    int
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindByOrderNumber(_ context.Context, number string) (*order.Order, error) {
	for _, o := range r.orders {
		if o.OrderNumber == number {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindByCustomer(_ context.Context, customerID uuid.UUID, _ shared.Filter) ([]order.Order, error) {
	var out []order.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]order.Order, error) {
	var out []order.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (r *memOrderRepo) Save(_ context.Context, o *order.Order) error {
	r.orders[o.ID] = o
	return nil
}

func (r *memOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.orders)), nil
}

func (r *memOrderRepo) GenerateOrderNumber(_ context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("ORD-%d-%05d", time.Now().Year(), r.seq), nil
}

type memProductRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) GetOrCreateBySKU(ctx context.Context, sku, name string) (*catalog.Product, error) {
	if p, err := r.FindBySKU(ctx, sku); err == nil {
		return p, nil
	}
	p, err := catalog.NewProduct(sku, name, valueobject.NewMoneyUSD(decimal.Zero))
	if err != nil {
		return nil, err
	}
	r.products[p.ID] = p
	return p, nil
}

func (r *memProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *memProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.products)), nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func newOrderFixture() (*OrderService, *memOrderRepo, *memProductRepo, *recordingPublisher) {
	orderRepo := newMemOrderRepo()
	productRepo := newMemProductRepo()
	publisher := &recordingPublisher{}
	service := NewOrderService(orderRepo, productRepo)
	service.SetEventPublisher(publisher)
	return service, orderRepo, productRepo, publisher
}

func TestOrderService_PlaceOrderCreatesUnknownSKUs(t *testing.T) {
	service, _, productRepo, publisher := newOrderFixture()
	ctx := context.Background()

	resp, err := service.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Makonde Traders",
		Lines: []OrderLineRequest{
			{ProductSKU: "cem-50kg", ProductName: "Cement 50kg", Quantity: 100, UnitPrice: "10.00"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "PLACED", resp.Status)
	assert.Equal(t, int64(100), resp.TotalQuantity)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(1000)))
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "CEM-50KG", resp.Lines[0].ProductSKU, "SKU is normalized to upper case")

	created, err := productRepo.FindBySKU(ctx, "CEM-50KG")
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.Lines[0].ProductID)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, order.EventTypeOrderPlaced, publisher.events[0].EventType())
}

func TestOrderService_PlaceOrderReusesExistingSKU(t *testing.T) {
	service, _, productRepo, _ := newOrderFixture()
	ctx := context.Background()

	existing, err := productRepo.GetOrCreateBySKU(ctx, "CEM-50KG", "Cement 50kg")
	require.NoError(t, err)

	resp, err := service.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Makonde Traders",
		Lines: []OrderLineRequest{
			{ProductSKU: "CEM-50KG", Quantity: 10, UnitPrice: "9.50"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.Lines[0].ProductID)
	assert.Len(t, productRepo.products, 1)
}

func TestOrderService_PlaceOrderRejectsBadPrice(t *testing.T) {
	service, orderRepo, _, _ := newOrderFixture()

	_, err := service.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Makonde Traders",
		Lines: []OrderLineRequest{
			{ProductSKU: "CEM-50KG", Quantity: 10, UnitPrice: "ten dollars"},
		},
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PRICE", domainErr.Code)
	assert.Empty(t, orderRepo.orders, "nothing persisted on a rejected line")
}

func TestOrderService_PlaceOrderRejectsLineWithoutProduct(t *testing.T) {
	service, _, _, _ := newOrderFixture()

	_, err := service.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Makonde Traders",
		Lines: []OrderLineRequest{
			{Quantity: 10, UnitPrice: "9.50"},
		},
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PRODUCT", domainErr.Code)
}

func TestOrderService_CancelOrder(t *testing.T) {
	service, _, _, publisher := newOrderFixture()
	ctx := context.Background()

	placed, err := service.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Makonde Traders",
		Lines: []OrderLineRequest{
			{ProductSKU: "CEM-50KG", ProductName: "Cement 50kg", Quantity: 5, UnitPrice: "10.00"},
		},
	})
	require.NoError(t, err)

	cancelled, err := service.CancelOrder(ctx, placed.ID, "customer changed their mind")
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)

	types := make([]string, 0, len(publisher.events))
	for _, e := range publisher.events {
		types = append(types, e.EventType())
	}
	assert.Contains(t, types, order.EventTypeOrderCancelled)
}

var _ order.OrderRepository = (*memOrderRepo)(nil)
var _ catalog.ProductRepository = (*memProductRepo)(nil)
