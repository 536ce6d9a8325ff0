package shared

// BaseAggregateRoot is embedded by Article, Person and Assignment. Version
// backs optimistic locking; events recorded by domain methods are held
// until the application layer pulls them after a successful commit.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	events  []DomainEvent
}

// NewBaseAggregateRoot starts a fresh aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// IncrementVersion marks a state change
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// RecordEvent queues an event for publication
func (a *BaseAggregateRoot) RecordEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// PendingEvents returns the queued events without clearing them
func (a *BaseAggregateRoot) PendingEvents() []DomainEvent {
	return a.events
}

// PullEvents returns the queued events and clears the queue
func (a *BaseAggregateRoot) PullEvents() []DomainEvent {
	events := a.events
	a.events = nil
	return events
}
