package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/shared"
)

// MovementType classifies a stock movement
type MovementType string

const (
	// MovementReceipt is the opening stock of a new article
	MovementReceipt MovementType = "receipt"
	// MovementAssign is stock leaving on a new assignment
	MovementAssign MovementType = "assign"
	// MovementEdit is the delta applied when an assignment quantity changes
	MovementEdit MovementType = "edit"
	// MovementReturn is stock restored when an assignment is deleted
	MovementReturn MovementType = "return"
	// MovementAdjust is a manual restock or write-off
	MovementAdjust MovementType = "adjust"
)

// IsValid returns true if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementReceipt, MovementAssign, MovementEdit, MovementReturn, MovementAdjust:
		return true
	}
	return false
}

// AffectsAssignments returns true for movements caused by the assignment lifecycle
func (t MovementType) AffectsAssignments() bool {
	return t == MovementAssign || t == MovementEdit || t == MovementReturn
}

// StockMovement is an append-only journal entry of a single stock change
type StockMovement struct {
	shared.BaseEntity
	ArticleID    uuid.UUID
	AssignmentID *uuid.UUID
	Type         MovementType
	// Delta is the signed change applied to article stock
	Delta int
	// Balance is the article stock after the change
	Balance int
	Note    string
}

// NewStockMovement creates a journal entry
func NewStockMovement(articleID uuid.UUID, movementType MovementType, delta, balance int) (*StockMovement, error) {
	if articleID == uuid.Nil {
		return nil, shared.NewValidationError("Article is required")
	}
	if !movementType.IsValid() {
		return nil, shared.NewValidationError("Unknown movement type: " + string(movementType))
	}
	if balance < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Stock balance cannot be negative")
	}
	return &StockMovement{
		BaseEntity: shared.NewBaseEntity(),
		ArticleID:  articleID,
		Type:       movementType,
		Delta:      delta,
		Balance:    balance,
	}, nil
}

// ForAssignment links the movement to the assignment that caused it
func (m *StockMovement) ForAssignment(id uuid.UUID) *StockMovement {
	m.AssignmentID = &id
	return m
}

// WithNote attaches a free-text note
func (m *StockMovement) WithNote(note string) *StockMovement {
	m.Note = note
	return m
}

// OccurredAt returns when the movement was recorded
func (m *StockMovement) OccurredAt() time.Time {
	return m.CreatedAt
}
