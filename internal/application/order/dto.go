package order

import (
	"time"

	"github.com/distroerp/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineRequest is one product position on an incoming order. Either a
// known product ID or a free-text SKU/name pair may be supplied; unknown
// SKUs are materialized into the catalog on first sight.
type OrderLineRequest struct {
	ProductID   *uuid.UUID `json:"product_id"`
	ProductSKU  string     `json:"product_sku"`
	ProductName string     `json:"product_name"`
	Quantity    int64      `json:"quantity" binding:"required,gt=0"`
	UnitPrice   string     `json:"unit_price" binding:"required"`
}

// PlaceOrderRequest creates and immediately places an order
type PlaceOrderRequest struct {
	CustomerID   uuid.UUID          `json:"customer_id" binding:"required"`
	CustomerName string             `json:"customer_name" binding:"required"`
	Lines        []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
	Notes        string             `json:"notes"`
}

// OrderLineResponse represents an order line in API responses
type OrderLineResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductSKU      string          `json:"product_sku"`
	ProductName     string          `json:"product_name"`
	QuantityOrdered int64           `json:"quantity_ordered"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	CustomerName  string              `json:"customer_name"`
	Status        string              `json:"status"`
	OrderDate     time.Time           `json:"order_date"`
	PlacedAt      *time.Time          `json:"placed_at,omitempty"`
	TotalQuantity int64               `json:"total_quantity"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	Lines         []OrderLineResponse `json:"lines"`
}

// ToOrderResponse converts a domain Order to its response shape
func ToOrderResponse(o *order.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for i := range o.Lines {
		line := &o.Lines[i]
		lines = append(lines, OrderLineResponse{
			ID:              line.ID,
			ProductID:       line.ProductID,
			ProductSKU:      line.ProductSKU,
			ProductName:     line.ProductName,
			QuantityOrdered: line.QuantityOrdered,
			UnitPrice:       line.UnitPrice,
			LineTotal:       line.LineTotal(),
		})
	}

	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		Status:        o.Status.String(),
		OrderDate:     o.OrderDate,
		PlacedAt:      o.PlacedAt,
		TotalQuantity: o.TotalQuantity(),
		TotalAmount:   o.TotalAmount(),
		Lines:         lines,
	}
}
