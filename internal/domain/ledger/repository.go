package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AssignmentRepository defines persistence for assignments
type AssignmentRepository interface {
	// FindByID finds an assignment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Assignment, error)

	// Insert stores a new assignment
	Insert(ctx context.Context, a *Assignment) error

	// UpdateQuantity sets the quantity only if it still equals expected.
	// Returns shared.ErrConcurrencyConflict when it does not.
	UpdateQuantity(ctx context.Context, id uuid.UUID, expected, quantity int) error

	// Delete removes an assignment. Returns shared.ErrNotFound if it no longer exists.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByArticle counts active assignments of an article
	CountByArticle(ctx context.Context, articleID uuid.UUID) (int64, error)

	// CountByPerson counts active assignments held by a person
	CountByPerson(ctx context.Context, personID uuid.UUID) (int64, error)

	// SumQuantityByArticle returns the issued quantity per article
	SumQuantityByArticle(ctx context.Context) (map[uuid.UUID]int, error)

	// ListHistory lists assignments joined with person and article details
	ListHistory(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, int64, error)
}

// StockMovementRepository is the append-only stock journal
type StockMovementRepository interface {
	// Append records a movement
	Append(ctx context.Context, m *StockMovement) error

	// FindByArticle lists movements of an article, newest first
	FindByArticle(ctx context.Context, articleID uuid.UUID, filter shared.Filter) ([]StockMovement, int64, error)

	// Totals returns the summed deltas per article
	Totals(ctx context.Context) ([]MovementTotals, error)
}

// HistoryFilter narrows the assignment history
type HistoryFilter struct {
	shared.Filter
	PersonID  *uuid.UUID
	ArticleID *uuid.UUID
	From      *time.Time
	To        *time.Time
}

// HistoryEntry is an assignment as shown in the delivery history
type HistoryEntry struct {
	ID           uuid.UUID
	PersonID     uuid.UUID
	PersonName   string
	ArticleID    uuid.UUID
	ArticleName  string
	ArticleGroup string
	ArticleSize  string
	PhotoURL     string
	Quantity     int
	UnitPrice    decimal.Decimal
	DeliveryDate time.Time
}

// TotalValue returns unit price times quantity
func (h HistoryEntry) TotalValue() decimal.Decimal {
	return h.UnitPrice.Mul(decimal.NewFromInt(int64(h.Quantity)))
}

// MovementTotals summarises the journal of one article
type MovementTotals struct {
	ArticleID uuid.UUID
	// Net is the sum of all deltas
	Net int
	// AssignmentNet is the sum of deltas caused by the assignment lifecycle
	AssignmentNet int
}
