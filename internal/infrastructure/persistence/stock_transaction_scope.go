package persistence

import (
	"context"

	"gorm.io/gorm"

	appstock "github.com/distroerp/backend/internal/application/stock"
	"github.com/distroerp/backend/internal/domain/stock"
)

// GormStockTransactionScope implements the stock application's
// TransactionScope using GORM transactions.
type GormStockTransactionScope struct {
	db *gorm.DB
}

// NewGormStockTransactionScope creates a new GormStockTransactionScope
func NewGormStockTransactionScope(db *gorm.DB) *GormStockTransactionScope {
	return &GormStockTransactionScope{db: db}
}

// Execute runs fn within a database transaction. An error from fn rolls
// the transaction back.
func (s *GormStockTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStockTransactionalRepositories{tx: tx})
	})
}

type gormStockTransactionalRepositories struct {
	tx *gorm.DB
}

// StockRepo returns the stock repository scoped to the current transaction
func (r *gormStockTransactionalRepositories) StockRepo() stock.StockRepository {
	return NewGormStockRepository(r.tx)
}

// MovementRepo returns the movement repository scoped to the current transaction
func (r *gormStockTransactionalRepositories) MovementRepo() stock.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

var _ appstock.TransactionScope = (*GormStockTransactionScope)(nil)
var _ appstock.TransactionalRepositories = (*gormStockTransactionalRepositories)(nil)
