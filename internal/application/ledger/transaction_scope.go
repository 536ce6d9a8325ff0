package ledger

import (
	"context"

	"github.com/mpvestiario/backend/internal/domain/article"
	"github.com/mpvestiario/backend/internal/domain/ledger"
	"github.com/mpvestiario/backend/internal/domain/personnel"
)

// TransactionScope provides transactional access to the ledger repositories.
// All repository calls made inside fn share one database transaction: if fn
// returns an error everything is rolled back, otherwise everything commits.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the current transaction.
//
// The ledger reads people only to validate the recipient; articles are read
// and their stock mutated through article.StockWriter; assignments and stock
// movements are written.
type TransactionalRepositories interface {
	Articles() article.Repository
	People() personnel.Repository
	Assignments() ledger.AssignmentRepository
	Movements() ledger.StockMovementRepository
}

// NoOpTransactionScope runs the function against plain repositories without a
// transaction. Used by tests and by stores that are atomic on their own.
type NoOpTransactionScope struct {
	articles    article.Repository
	people      personnel.Repository
	assignments ledger.AssignmentRepository
	movements   ledger.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	articles article.Repository,
	people personnel.Repository,
	assignments ledger.AssignmentRepository,
	movements ledger.StockMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		articles:    articles,
		people:      people,
		assignments: assignments,
		movements:   movements,
	}
}

// Execute runs fn directly.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Articles returns the article repository.
func (s *NoOpTransactionScope) Articles() article.Repository {
	return s.articles
}

// People returns the person repository.
func (s *NoOpTransactionScope) People() personnel.Repository {
	return s.people
}

// Assignments returns the assignment repository.
func (s *NoOpTransactionScope) Assignments() ledger.AssignmentRepository {
	return s.assignments
}

// Movements returns the stock movement repository.
func (s *NoOpTransactionScope) Movements() ledger.StockMovementRepository {
	return s.movements
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
