package finance

import (
	"strings"
	"time"

	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies an expense record
type ExpenseCategory string

const (
	// ExpenseCategoryStockLoss covers shrinkage, damage and count write-offs
	ExpenseCategoryStockLoss ExpenseCategory = "STOCK_LOSS"
	// ExpenseCategoryLogistics covers delivery and transport costs
	ExpenseCategoryLogistics ExpenseCategory = "LOGISTICS"
	// ExpenseCategoryOther covers everything else
	ExpenseCategoryOther ExpenseCategory = "OTHER"
)

// ExpenseRecord is a posted expense. Stock-loss records are created by the
// expense-posting collaborator in response to negative stock adjustments;
// they are never edited afterwards, corrections are new records.
type ExpenseRecord struct {
	shared.BaseEntity
	BranchID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_expense_branch"`
	Category    ExpenseCategory `gorm:"type:varchar(30);not null;index:idx_expense_category"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Description string          `gorm:"type:varchar(255);not null"`
	Reference   string          `gorm:"type:varchar(100)"` // Source aggregate (e.g. stock position ID)
	IncurredAt  time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (ExpenseRecord) TableName() string {
	return "expense_records"
}

// NewExpenseRecord posts a new expense
func NewExpenseRecord(branchID uuid.UUID, category ExpenseCategory, amount decimal.Decimal, description string) (*ExpenseRecord, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Expense description cannot be empty")
	}

	return &ExpenseRecord{
		BaseEntity:  shared.NewBaseEntity(),
		BranchID:    branchID,
		Category:    category,
		Amount:      amount,
		Description: description,
		IncurredAt:  time.Now(),
	}, nil
}

// WithReference links the expense back to the aggregate that caused it
func (e *ExpenseRecord) WithReference(reference string) *ExpenseRecord {
	e.Reference = reference
	return e
}
