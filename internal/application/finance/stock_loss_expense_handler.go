package finance

import (
	"context"
	"fmt"

	"github.com/distroerp/backend/internal/domain/finance"
	"github.com/distroerp/backend/internal/domain/shared"
	"github.com/distroerp/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockLossExpenseHandler posts an expense record whenever a negative stock
// adjustment writes quantity off. It subscribes to adjustment events instead
// of being called from the ledger, keeping expense posting out of the stock
// core.
type StockLossExpenseHandler struct {
	expenseRepo finance.ExpenseRepository
	logger      *zap.Logger
}

// NewStockLossExpenseHandler creates a new StockLossExpenseHandler
func NewStockLossExpenseHandler(expenseRepo finance.ExpenseRepository, logger *zap.Logger) *StockLossExpenseHandler {
	return &StockLossExpenseHandler{
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *StockLossExpenseHandler) EventTypes() []string {
	return []string{stock.EventTypeStockAdjusted}
}

// Handle posts a STOCK_LOSS expense for negative adjustments, valued at the
// position's average unit cost at adjustment time. Positive corrections are
// ignored.
func (h *StockLossExpenseHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	adjusted, ok := event.(*stock.StockAdjustedEvent)
	if !ok {
		return nil
	}
	if adjusted.Delta >= 0 {
		return nil
	}

	lossQty := decimal.NewFromInt(-adjusted.Delta)
	amount := lossQty.Mul(adjusted.UnitCost).Round(2)
	if !amount.IsPositive() {
		// Zero cost basis: nothing to post, the write-off had no book value
		return nil
	}

	description := fmt.Sprintf("Stock loss: %d units written off (%s)", -adjusted.Delta, adjusted.Reason)
	expense, err := finance.NewExpenseRecord(adjusted.BranchID, finance.ExpenseCategoryStockLoss, amount, description)
	if err != nil {
		return err
	}
	expense.WithReference(adjusted.AggregateID().String())

	if err := h.expenseRepo.Create(ctx, expense); err != nil {
		h.logger.Error("failed to post stock loss expense",
			zap.String("stock_id", adjusted.AggregateID().String()),
			zap.Int64("delta", adjusted.Delta),
			zap.Error(err))
		return err
	}

	h.logger.Info("posted stock loss expense",
		zap.String("branch_id", adjusted.BranchID.String()),
		zap.String("product_id", adjusted.ProductID.String()),
		zap.Int64("delta", adjusted.Delta),
		zap.String("amount", amount.String()))

	return nil
}

var _ shared.EventHandler = (*StockLossExpenseHandler)(nil)
