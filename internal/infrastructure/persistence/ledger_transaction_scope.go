package persistence

import (
	"context"

	ledgerapp "github.com/mpvestiario/backend/internal/application/ledger"
	"github.com/mpvestiario/backend/internal/domain/article"
	"github.com/mpvestiario/backend/internal/domain/ledger"
	"github.com/mpvestiario/backend/internal/domain/personnel"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Stock writes and assignment writes made through the scoped repositories
// commit together or not at all.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ledgerapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Articles returns the article repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Articles() article.Repository {
	return NewGormArticleRepository(r.tx)
}

// People returns the person repository scoped to the current transaction.
func (r *gormTransactionalRepositories) People() personnel.Repository {
	return NewGormPersonRepository(r.tx)
}

// Assignments returns the assignment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Assignments() ledger.AssignmentRepository {
	return NewGormAssignmentRepository(r.tx)
}

// Movements returns the stock movement repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Movements() ledger.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ ledgerapp.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ ledgerapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
