package order

import (
	"context"
	"strings"

	"github.com/distroerp/backend/internal/domain/catalog"
	"github.com/distroerp/backend/internal/domain/order"
	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// OrderService handles order book operations. Placed orders are read-only
// from the fulfillment side; placing is the only real write path, and it may
// materialize catalog entries for SKUs seen for the first time.
type OrderService struct {
	orderRepo      order.OrderRepository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.OrderRepository, productRepo catalog.ProductRepository) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// PlaceOrder creates an order from the request lines and places it in one
// step, freezing the lines. Lines referencing an unknown SKU get a catalog
// entry created for them (idempotent, keyed by SKU).
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(orderNumber, req.CustomerID, req.CustomerName)
	if err != nil {
		return nil, err
	}
	o.Notes = req.Notes

	for _, lineReq := range req.Lines {
		unitPrice, err := valueobject.NewMoneyUSDFromString(lineReq.UnitPrice)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PRICE", "Unit price must be a valid decimal")
		}

		product, err := s.resolveProduct(ctx, lineReq)
		if err != nil {
			return nil, err
		}

		if err := o.AddLine(product.ID, product.SKU, product.Name, lineReq.Quantity, unitPrice); err != nil {
			return nil, err
		}
	}

	if err := o.Place(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	resp := ToOrderResponse(o)
	return &resp, nil
}

// resolveProduct finds the catalog product for a line request, creating one
// for a never-before-seen SKU.
func (s *OrderService) resolveProduct(ctx context.Context, lineReq OrderLineRequest) (*catalog.Product, error) {
	if lineReq.ProductID != nil && *lineReq.ProductID != uuid.Nil {
		return s.productRepo.FindByID(ctx, *lineReq.ProductID)
	}

	sku := strings.TrimSpace(lineReq.ProductSKU)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Line needs a product ID or a SKU")
	}
	name := strings.TrimSpace(lineReq.ProductName)
	if name == "" {
		name = sku
	}

	return s.productRepo.GetOrCreateBySKU(ctx, sku, name)
}

// CancelOrder withdraws an order
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetOrder returns one order with its lines
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetOrderByNumber returns one order by its business number
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListOrders returns orders matching the filter
func (s *OrderService) ListOrders(ctx context.Context, filter shared.Filter) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}
	return responses, nil
}

func (s *OrderService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	aggregate.ClearDomainEvents()
}
