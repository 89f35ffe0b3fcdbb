package fulfillment

import (
	"time"

	"github.com/distroerp/backend/internal/domain/fulfillment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateFulfillmentRequest starts fulfillment tracking for a placed order
type CreateFulfillmentRequest struct {
	OrderID             uuid.UUID `json:"order_id" binding:"required"`
	OriginBranchID      uuid.UUID `json:"origin_branch_id" binding:"required"`
	DestinationBranchID uuid.UUID `json:"destination_branch_id" binding:"required"`
}

// AllocationLineRequest asks for a quantity of one order line on the shipment
type AllocationLineRequest struct {
	OrderLineID uuid.UUID `json:"order_line_id" binding:"required"`
	Quantity    int64     `json:"quantity" binding:"required,gt=0"`
}

// AllocateShipmentRequest carves a new shipment out of a fulfillment
type AllocateShipmentRequest struct {
	FulfillmentID   uuid.UUID               `json:"fulfillment_id" binding:"required"`
	VehicleCapacity int64                   `json:"vehicle_capacity" binding:"required,gt=0"`
	Lines           []AllocationLineRequest `json:"lines" binding:"required,min=1,dive"`
	ScheduledAt     *time.Time              `json:"scheduled_at"`
	TripID          *uuid.UUID              `json:"trip_id"`
}

// TransitionShipmentRequest moves a shipment through its status machine
type TransitionShipmentRequest struct {
	ShipmentID uuid.UUID `json:"shipment_id" binding:"required"`
	NewStatus  string    `json:"new_status" binding:"required"`
}

// ActualDeliveryLine carries the received quantity for one shipment line
type ActualDeliveryLine struct {
	ShipmentLineID uuid.UUID `json:"shipment_line_id" binding:"required"`
	Quantity       int64     `json:"quantity" binding:"min=0"`
}

// RecordActualDeliveryRequest corrects a partially delivered shipment's
// line quantities to what actually arrived
type RecordActualDeliveryRequest struct {
	ShipmentID uuid.UUID            `json:"-"`
	Lines      []ActualDeliveryLine `json:"lines" binding:"required,min=1,dive"`
}

// RecordPaymentRequest records a pending collection against a fulfillment
type RecordPaymentRequest struct {
	FulfillmentID uuid.UUID  `json:"fulfillment_id" binding:"required"`
	ShipmentID    *uuid.UUID `json:"shipment_id"`
	Amount        string     `json:"amount" binding:"required"`
	Method        string     `json:"method" binding:"required"`
	Reference     string     `json:"reference"`
	ReceiptNumber string     `json:"receipt_number"`
	CollectedByID *uuid.UUID `json:"collected_by_id"`
}

// ShipmentLineResponse represents a shipment line in API responses.
// QuantityRemaining is derived from the order line's sibling shipment lines
// at response time, never stored.
type ShipmentLineResponse struct {
	ID                uuid.UUID       `json:"id"`
	OrderLineID       uuid.UUID       `json:"order_line_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	QuantityOrdered   int64           `json:"quantity_ordered"`
	QuantityDelivered int64           `json:"quantity_delivered"`
	QuantityRemaining int64           `json:"quantity_remaining"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
}

// ShipmentResponse represents a shipment in API responses
type ShipmentResponse struct {
	ID              uuid.UUID              `json:"id"`
	FulfillmentID   uuid.UUID              `json:"fulfillment_id"`
	ShipmentNumber  string                 `json:"shipment_number"`
	Status          string                 `json:"status"`
	VehicleCapacity int64                  `json:"vehicle_capacity"`
	ItemsLoaded     int64                  `json:"items_loaded"`
	TotalValue      decimal.Decimal        `json:"total_value"`
	TripID          *uuid.UUID             `json:"trip_id,omitempty"`
	ScheduledAt     *time.Time             `json:"scheduled_at,omitempty"`
	DeliveredAt     *time.Time             `json:"delivered_at,omitempty"`
	ActualsRecorded bool                   `json:"actuals_recorded"`
	StockAssigned   bool                   `json:"stock_assigned"`
	Lines           []ShipmentLineResponse `json:"lines"`
}

// FulfillmentResponse represents a fulfillment in API responses
type FulfillmentResponse struct {
	ID                    uuid.UUID       `json:"id"`
	FulfillmentNumber     string          `json:"fulfillment_number"`
	OrderID               uuid.UUID       `json:"order_id"`
	OriginBranchID        uuid.UUID       `json:"origin_branch_id"`
	DestinationBranchID   uuid.UUID       `json:"destination_branch_id"`
	Status                string          `json:"status"`
	TotalItemsOrdered     int64           `json:"total_items_ordered"`
	TotalItemsFulfilled   int64           `json:"total_items_fulfilled"`
	TotalItemsRemaining   int64           `json:"total_items_remaining"`
	TotalOrderValue       decimal.Decimal `json:"total_order_value"`
	TotalCollected        decimal.Decimal `json:"total_collected"`
	TotalRemaining        decimal.Decimal `json:"total_remaining"`
	FulfillmentPercentage decimal.Decimal `json:"fulfillment_percentage"`
	PaymentPercentage     decimal.Decimal `json:"payment_percentage"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// PaymentResponse represents a payment collection in API responses
type PaymentResponse struct {
	ID                  uuid.UUID       `json:"id"`
	FulfillmentID       uuid.UUID       `json:"fulfillment_id"`
	ShipmentID          *uuid.UUID      `json:"shipment_id,omitempty"`
	PaymentNumber       string          `json:"payment_number"`
	Amount              decimal.Decimal `json:"amount"`
	Method              string          `json:"method"`
	Status              string          `json:"status"`
	Reference           string          `json:"reference,omitempty"`
	ReceiptNumber       string          `json:"receipt_number,omitempty"`
	IsDeposited         bool            `json:"is_deposited"`
	IsOutstanding       bool            `json:"is_outstanding"`
	DepositedToBranchID *uuid.UUID      `json:"deposited_to_branch_id,omitempty"`
	DepositedAt         *time.Time      `json:"deposited_at,omitempty"`
	CollectedAt         time.Time       `json:"collected_at"`
	ConfirmedAt         *time.Time      `json:"confirmed_at,omitempty"`
}

// OutstandingPaymentsResponse lists undeposited collected money with its
// running total for branch cash reconciliation.
type OutstandingPaymentsResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Total    decimal.Decimal   `json:"total"`
}

// ToFulfillmentResponse converts a domain Fulfillment to its response shape
func ToFulfillmentResponse(f *fulfillment.Fulfillment) FulfillmentResponse {
	return FulfillmentResponse{
		ID:                    f.ID,
		FulfillmentNumber:     f.FulfillmentNumber,
		OrderID:               f.OrderID,
		OriginBranchID:        f.OriginBranchID,
		DestinationBranchID:   f.DestinationBranchID,
		Status:                f.Status.String(),
		TotalItemsOrdered:     f.TotalItemsOrdered,
		TotalItemsFulfilled:   f.TotalItemsFulfilled,
		TotalItemsRemaining:   f.TotalItemsRemaining,
		TotalOrderValue:       f.TotalOrderValue,
		TotalCollected:        f.TotalCollected,
		TotalRemaining:        f.TotalRemaining,
		FulfillmentPercentage: f.FulfillmentPercentage(),
		PaymentPercentage:     f.PaymentPercentage(),
		CreatedAt:             f.CreatedAt,
		UpdatedAt:             f.UpdatedAt,
	}
}

// ToPaymentResponse converts a domain PaymentCollection to its response shape
func ToPaymentResponse(p *fulfillment.PaymentCollection) PaymentResponse {
	return PaymentResponse{
		ID:                  p.ID,
		FulfillmentID:       p.FulfillmentID,
		ShipmentID:          p.ShipmentID,
		PaymentNumber:       p.PaymentNumber,
		Amount:              p.Amount,
		Method:              string(p.Method),
		Status:              p.Status.String(),
		Reference:           p.Reference,
		ReceiptNumber:       p.ReceiptNumber,
		IsDeposited:         p.IsDeposited,
		IsOutstanding:       p.IsOutstanding(),
		DepositedToBranchID: p.DepositedToBranchID,
		DepositedAt:         p.DepositedAt,
		CollectedAt:         p.CollectedAt,
		ConfirmedAt:         p.ConfirmedAt,
	}
}
