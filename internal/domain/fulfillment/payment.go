package fulfillment

import (
	"strings"
	"time"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the state of one collection
type PaymentStatus string

const (
	// PaymentStatusPending means the collection was recorded but not yet confirmed
	PaymentStatusPending PaymentStatus = "PENDING"
	// PaymentStatusCompleted means the money was received; only these count toward collected totals
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	// PaymentStatusFailed means the collection did not go through
	PaymentStatusFailed PaymentStatus = "FAILED"
	// PaymentStatusRefunded means a completed collection was returned to the customer
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentMethod represents how the money was collected
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid returns true if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodMobileMoney,
		PaymentMethodCheque, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// PaymentCollection records one (possibly partial) payment against a
// fulfillment, optionally tagged with the shipment during which it was
// collected. Deposit tracking is independent of confirmation: money counts
// toward collected totals once COMPLETED, and the deposit flag only drives
// the cash-custody signal for branch reconciliation.
type PaymentCollection struct {
	shared.BaseEntity
	FulfillmentID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_payment_fulfillment"`
	ShipmentID          *uuid.UUID      `gorm:"type:uuid;index:idx_payment_shipment"`
	PaymentNumber       string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_number"`
	Amount              decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Method              PaymentMethod   `gorm:"type:varchar(20);not null"`
	Status              PaymentStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_payment_status"`
	Reference           string          `gorm:"type:varchar(100)"` // Bank/mobile-money transaction reference
	ReceiptNumber       string          `gorm:"type:varchar(50)"`
	IsDeposited         bool            `gorm:"not null;default:false"`
	DepositedToBranchID *uuid.UUID      `gorm:"type:uuid"`
	DepositedAt         *time.Time      `gorm:"type:timestamptz"`
	CollectedAt         time.Time       `gorm:"type:timestamptz;not null"`
	ConfirmedAt         *time.Time      `gorm:"type:timestamptz"`
	CollectedByID       *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentCollection) TableName() string {
	return "payment_collections"
}

// NewPaymentCollection records a pending collection against a fulfillment
func NewPaymentCollection(paymentNumber string, fulfillmentID uuid.UUID, amount decimal.Decimal, method PaymentMethod) (*PaymentCollection, error) {
	if strings.TrimSpace(paymentNumber) == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if fulfillmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FULFILLMENT", "Fulfillment ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payment method")
	}

	return &PaymentCollection{
		BaseEntity:    shared.NewBaseEntity(),
		FulfillmentID: fulfillmentID,
		PaymentNumber: paymentNumber,
		Amount:        amount,
		Method:        method,
		Status:        PaymentStatusPending,
		CollectedAt:   time.Now(),
	}, nil
}

// WithShipment tags the shipment during which the money was collected
func (p *PaymentCollection) WithShipment(shipmentID uuid.UUID) *PaymentCollection {
	p.ShipmentID = &shipmentID
	return p
}

// WithReference sets the external transaction reference
func (p *PaymentCollection) WithReference(reference string) *PaymentCollection {
	p.Reference = reference
	return p
}

// WithReceipt sets the receipt number handed to the customer
func (p *PaymentCollection) WithReceipt(receiptNumber string) *PaymentCollection {
	p.ReceiptNumber = receiptNumber
	return p
}

// WithCollectedBy sets the employee who collected the money
func (p *PaymentCollection) WithCollectedBy(employeeID uuid.UUID) *PaymentCollection {
	p.CollectedByID = &employeeID
	return p
}

// Confirm transitions a pending collection to COMPLETED
func (p *PaymentCollection) Confirm() error {
	if p.Status != PaymentStatusPending {
		return shared.ErrInvalidTransition
	}

	now := time.Now()
	p.Status = PaymentStatusCompleted
	p.ConfirmedAt = &now
	p.Touch()
	return nil
}

// Fail transitions a pending collection to FAILED
func (p *PaymentCollection) Fail() error {
	if p.Status != PaymentStatusPending {
		return shared.ErrInvalidTransition
	}

	p.Status = PaymentStatusFailed
	p.Touch()
	return nil
}

// Refund transitions a completed collection to REFUNDED
func (p *PaymentCollection) Refund() error {
	if p.Status != PaymentStatusCompleted {
		return shared.ErrInvalidTransition
	}

	p.Status = PaymentStatusRefunded
	p.Touch()
	return nil
}

// MarkDeposited records that the cash reached a branch account. Only valid
// on completed collections; it does not change collected totals, only the
// custody signal.
func (p *PaymentCollection) MarkDeposited(branchID uuid.UUID) error {
	if p.Status != PaymentStatusCompleted {
		return shared.NewDomainError("NOT_COMPLETED", "Only completed payments can be deposited")
	}
	if branchID == uuid.Nil {
		return shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if p.IsDeposited {
		return shared.ErrDuplicateApplication
	}

	now := time.Now()
	p.IsDeposited = true
	p.DepositedToBranchID = &branchID
	p.DepositedAt = &now
	p.Touch()
	return nil
}

// IsOutstanding reports money that was collected but has not reached a
// branch account yet.
func (p *PaymentCollection) IsOutstanding() bool {
	return p.Status == PaymentStatusCompleted && !p.IsDeposited
}
