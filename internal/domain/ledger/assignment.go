package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Assignment records units of an article issued to a person.
// An assignment is either active (it exists and its quantity is out of stock)
// or gone; there is no intermediate state.
type Assignment struct {
	shared.BaseAggregateRoot
	PersonID     uuid.UUID
	ArticleID    uuid.UUID
	Quantity     int
	DeliveryDate time.Time
	// UnitPrice is the article price at the time of issue, when known
	UnitPrice *decimal.Decimal
}

// NewAssignment creates an assignment. deliveryDate defaults to now.
func NewAssignment(personID, articleID uuid.UUID, quantity int, deliveryDate time.Time, unitPrice *decimal.Decimal) (*Assignment, error) {
	if personID == uuid.Nil {
		return nil, shared.NewValidationError("Person is required")
	}
	if articleID == uuid.Nil {
		return nil, shared.NewValidationError("Article is required")
	}
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	if deliveryDate.IsZero() {
		deliveryDate = time.Now()
	}

	a := &Assignment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PersonID:          personID,
		ArticleID:         articleID,
		Quantity:          quantity,
		DeliveryDate:      deliveryDate,
		UnitPrice:         unitPrice,
	}
	a.RecordEvent(NewAssignmentCommittedEvent(a))
	return a, nil
}

// ChangeQuantity sets a new issued quantity and returns the signed change
// (positive means more units leave stock).
func (a *Assignment) ChangeQuantity(newQuantity int) (int, error) {
	if err := ValidateQuantity(newQuantity); err != nil {
		return 0, err
	}
	delta := newQuantity - a.Quantity
	if delta == 0 {
		return 0, nil
	}
	old := a.Quantity
	a.Quantity = newQuantity
	a.Touch()
	a.IncrementVersion()
	a.RecordEvent(NewAssignmentQuantityChangedEvent(a, old))
	return delta, nil
}

// MarkDeleted records the removal of the assignment
func (a *Assignment) MarkDeleted() {
	a.RecordEvent(NewAssignmentDeletedEvent(a))
}

// TotalValue returns price snapshot times quantity, zero when no price was captured
func (a *Assignment) TotalValue() decimal.Decimal {
	if a.UnitPrice == nil {
		return decimal.Zero
	}
	return a.UnitPrice.Mul(decimal.NewFromInt(int64(a.Quantity)))
}

// ValidateQuantity checks that an issued quantity is a positive integer
func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return shared.NewValidationError("Quantity must be a positive integer")
	}
	return nil
}
