package ledger

import (
	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/shared"
)

// AggregateTypeAssignment is the aggregate type name used in events
const AggregateTypeAssignment = "Assignment"

// Event type constants
const (
	EventTypeAssignmentCommitted       = "AssignmentCommitted"
	EventTypeAssignmentQuantityChanged = "AssignmentQuantityChanged"
	EventTypeAssignmentDeleted         = "AssignmentDeleted"
	EventTypeStockAdjusted             = "StockAdjusted"
	EventTypeStockCritical             = "StockCritical"
)

// AssignmentCommittedEvent is raised when units are issued to a person
type AssignmentCommittedEvent struct {
	shared.BaseDomainEvent
	PersonID  uuid.UUID `json:"person_id"`
	ArticleID uuid.UUID `json:"article_id"`
	Quantity  int       `json:"quantity"`
}

// NewAssignmentCommittedEvent creates a new AssignmentCommittedEvent
func NewAssignmentCommittedEvent(a *Assignment) *AssignmentCommittedEvent {
	return &AssignmentCommittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentCommitted, AggregateTypeAssignment, a.ID),
		PersonID:        a.PersonID,
		ArticleID:       a.ArticleID,
		Quantity:        a.Quantity,
	}
}

// AssignmentQuantityChangedEvent is raised when an assignment is edited
type AssignmentQuantityChangedEvent struct {
	shared.BaseDomainEvent
	ArticleID   uuid.UUID `json:"article_id"`
	OldQuantity int       `json:"old_quantity"`
	NewQuantity int       `json:"new_quantity"`
}

// NewAssignmentQuantityChangedEvent creates a new AssignmentQuantityChangedEvent
func NewAssignmentQuantityChangedEvent(a *Assignment, oldQuantity int) *AssignmentQuantityChangedEvent {
	return &AssignmentQuantityChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentQuantityChanged, AggregateTypeAssignment, a.ID),
		ArticleID:       a.ArticleID,
		OldQuantity:     oldQuantity,
		NewQuantity:     a.Quantity,
	}
}

// AssignmentDeletedEvent is raised when an assignment is removed and its stock restored
type AssignmentDeletedEvent struct {
	shared.BaseDomainEvent
	PersonID  uuid.UUID `json:"person_id"`
	ArticleID uuid.UUID `json:"article_id"`
	Quantity  int       `json:"quantity"`
}

// NewAssignmentDeletedEvent creates a new AssignmentDeletedEvent
func NewAssignmentDeletedEvent(a *Assignment) *AssignmentDeletedEvent {
	return &AssignmentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssignmentDeleted, AggregateTypeAssignment, a.ID),
		PersonID:        a.PersonID,
		ArticleID:       a.ArticleID,
		Quantity:        a.Quantity,
	}
}

// StockAdjustedEvent is raised on manual restock or write-off
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	Delta   int `json:"delta"`
	Balance int `json:"balance"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent keyed on the article
func NewStockAdjustedEvent(articleID uuid.UUID, delta, balance int) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, "Article", articleID),
		Delta:           delta,
		Balance:         balance,
	}
}

// StockCriticalEvent is raised when a ledger write leaves an article at or
// below the critical threshold
type StockCriticalEvent struct {
	shared.BaseDomainEvent
	Balance   int `json:"balance"`
	Threshold int `json:"threshold"`
}

// NewStockCriticalEvent creates a new StockCriticalEvent keyed on the article
func NewStockCriticalEvent(articleID uuid.UUID, balance, threshold int) *StockCriticalEvent {
	return &StockCriticalEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockCritical, "Article", articleID),
		Balance:         balance,
		Threshold:       threshold,
	}
}

// IsOutOfStock reports whether nothing is left on hand
func (e *StockCriticalEvent) IsOutOfStock() bool {
	return e.Balance == 0
}
