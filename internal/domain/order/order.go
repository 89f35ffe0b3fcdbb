package order

import (
	"strings"
	"time"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of a customer order
type OrderStatus string

const (
	// OrderStatusDraft means lines may still be added or removed
	OrderStatusDraft OrderStatus = "DRAFT"
	// OrderStatusPlaced means the order is confirmed and its lines are frozen
	OrderStatusPlaced OrderStatus = "PLACED"
	// OrderStatusCancelled means the order was withdrawn before fulfillment completed
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// Order is a customer order: the demand side of fulfillment. Once placed,
// its lines become the immutable baseline that shipments are allocated
// against; corrections after placement go through the fulfillment flow,
// never by editing the order.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber  string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_order_number"`
	CustomerID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_order_customer"`
	CustomerName string      `gorm:"type:varchar(255);not null"`
	Status       OrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	OrderDate    time.Time   `gorm:"type:timestamptz;not null"`
	PlacedAt     *time.Time  `gorm:"type:timestamptz"`
	Notes        string      `gorm:"type:text"`
	Lines        []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// OrderLine is one product position on an order. QuantityOrdered on a placed
// order never changes; delivered progress lives on shipment lines.
type OrderLine struct {
	shared.BaseEntity
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_order_line_order"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_order_line_product"`
	ProductSKU      string          `gorm:"type:varchar(64);not null"`
	ProductName     string          `gorm:"type:varchar(255);not null"` // Snapshot at order time
	QuantityOrdered int64           `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"` // Snapshot at order time
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "order_lines"
}

// LineTotal returns quantity * unit price for this line
func (l *OrderLine) LineTotal() decimal.Decimal {
	return decimal.NewFromInt(l.QuantityOrdered).Mul(l.UnitPrice)
}

// NewOrder creates a new draft order
func NewOrder(orderNumber string, customerID uuid.UUID, customerName string) (*Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if strings.TrimSpace(customerName) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer name cannot be empty")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		Status:            OrderStatusDraft,
		OrderDate:         time.Now(),
		Lines:             []OrderLine{},
	}, nil
}

// AddLine adds a product line to a draft order. The same product may not
// appear on two lines; adjust the existing line instead.
func (o *Order) AddLine(productID uuid.UUID, sku, name string, quantity int64, unitPrice valueobject.Money) error {
	if o.Status != OrderStatusDraft {
		return shared.ErrInvalidState
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	for _, line := range o.Lines {
		if line.ProductID == productID {
			return shared.NewDomainError("DUPLICATE_LINE", "Product already has a line on this order")
		}
	}

	o.Lines = append(o.Lines, OrderLine{
		BaseEntity:      shared.NewBaseEntity(),
		OrderID:         o.ID,
		ProductID:       productID,
		ProductSKU:      sku,
		ProductName:     name,
		QuantityOrdered: quantity,
		UnitPrice:       unitPrice.Amount(),
	})
	o.IncrementVersion()

	return nil
}

// RemoveLine removes a line from a draft order
func (o *Order) RemoveLine(lineID uuid.UUID) error {
	if o.Status != OrderStatusDraft {
		return shared.ErrInvalidState
	}

	for i, line := range o.Lines {
		if line.ID == lineID {
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			o.IncrementVersion()
			return nil
		}
	}

	return shared.ErrNotFound
}

// Place confirms the order and freezes its lines
func (o *Order) Place() error {
	if o.Status != OrderStatusDraft {
		return shared.ErrInvalidState
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot place an order with no lines")
	}

	now := time.Now()
	o.Status = OrderStatusPlaced
	o.PlacedAt = &now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return nil
}

// Cancel withdraws the order. Placed orders can be cancelled as long as the
// fulfillment side allows it; that check is the fulfillment tracker's call.
func (o *Order) Cancel(reason string) error {
	if o.Status == OrderStatusCancelled {
		return shared.ErrInvalidState
	}

	o.Status = OrderStatusCancelled
	if reason != "" {
		o.Notes = reason
	}
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCancelledEvent(o, reason))

	return nil
}

// IsPlaced returns true once the order has been confirmed
func (o *Order) IsPlaced() bool {
	return o.Status == OrderStatusPlaced
}

// TotalAmount returns the sum of all line totals
func (o *Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// TotalQuantity returns the sum of quantities across all lines
func (o *Order) TotalQuantity() int64 {
	var total int64
	for _, line := range o.Lines {
		total += line.QuantityOrdered
	}
	return total
}

// FindLine returns the line with the given ID, or nil
func (o *Order) FindLine(lineID uuid.UUID) *OrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}
