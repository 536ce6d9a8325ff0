package personnel

import (
	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/shared"
)

// AggregateTypePerson is the aggregate type name used in events
const AggregateTypePerson = "Person"

const (
	EventTypePersonCreated = "PersonCreated"
	EventTypePersonUpdated = "PersonUpdated"
	EventTypePersonDeleted = "PersonDeleted"
)

// PersonChangedEvent is raised whenever a person is created, edited or toggled
type PersonChangedEvent struct {
	shared.BaseDomainEvent
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// NewPersonChangedEvent creates a PersonChangedEvent of the given type
func NewPersonChangedEvent(p *Person, eventType string) *PersonChangedEvent {
	return &PersonChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePerson, p.ID),
		Name:            p.Name,
		Active:          p.Active,
	}
}

// PersonDeletedEvent is raised when a person is removed
type PersonDeletedEvent struct {
	shared.BaseDomainEvent
}

// NewPersonDeletedEvent creates a PersonDeletedEvent
func NewPersonDeletedEvent(id uuid.UUID) *PersonDeletedEvent {
	return &PersonDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePersonDeleted, AggregateTypePerson, id),
	}
}
