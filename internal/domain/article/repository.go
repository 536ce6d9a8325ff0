package article

import (
	"context"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/shared"
)

// Filter narrows article list queries
type Filter struct {
	shared.Filter
	Type         Type
	Season       Season
	Group        string
	CriticalOnly bool
	Threshold    int
}

// StockWriter mutates the quantity field of an article.
// Implementations must apply each change as a single conditional statement so
// that concurrent writers can never drive stock below zero.
type StockWriter interface {
	// DecrementQuantity subtracts qty only if at least qty units are on hand.
	// Returns shared.ErrInsufficientStock when the guard fails and
	// shared.ErrNotFound when the article does not exist.
	DecrementQuantity(ctx context.Context, id uuid.UUID, qty int) error

	// IncrementQuantity adds qty back to stock
	IncrementQuantity(ctx context.Context, id uuid.UUID, qty int) error

	// SetQuantity overwrites stock only if it still equals expected.
	// Returns shared.ErrConcurrencyConflict when another writer got there first.
	SetQuantity(ctx context.Context, id uuid.UUID, expected, quantity int) error
}

// Repository defines persistence for articles
type Repository interface {
	StockWriter

	// FindByID finds an article by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Article, error)

	// FindBySupplierCode finds an article by the supplier's code (barcode lookup)
	FindBySupplierCode(ctx context.Context, code string) (*Article, error)

	// FindAll finds all articles matching the filter
	FindAll(ctx context.Context, filter Filter) ([]Article, error)

	// Count counts articles matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// Quantities returns the current stock of every article
	Quantities(ctx context.Context) (map[uuid.UUID]int, error)

	// Create inserts a new article with its opening stock
	Create(ctx context.Context, a *Article) error

	// Update writes an existing article's descriptive fields; the quantity
	// column is never written. Returns shared.ErrNotFound when the article
	// no longer exists.
	Update(ctx context.Context, a *Article) error

	// Delete deletes an article
	Delete(ctx context.Context, id uuid.UUID) error
}
