package personnel

import (
	"strings"

	"github.com/mpvestiario/backend/internal/domain/shared"
)

// Person is a member of staff who can receive workwear
type Person struct {
	shared.BaseAggregateRoot
	Name         string
	Role         string
	ShirtSize    string
	TrousersSize string
	VestSize     string
	Notes        string
	UnitPrices   string
	Active       bool
}

// Profile holds the editable fields of a person
type Profile struct {
	Name         string
	Role         string
	ShirtSize    string
	TrousersSize string
	VestSize     string
	Notes        string
	UnitPrices   string
}

// NewPerson creates an active person
func NewPerson(p Profile) (*Person, error) {
	person := &Person{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Active:            true,
	}
	if err := person.apply(p); err != nil {
		return nil, err
	}
	person.RecordEvent(NewPersonChangedEvent(person, EventTypePersonCreated))
	return person, nil
}

// Update replaces the person's profile
func (p *Person) Update(profile Profile) error {
	if err := p.apply(profile); err != nil {
		return err
	}
	p.Touch()
	p.IncrementVersion()
	p.RecordEvent(NewPersonChangedEvent(p, EventTypePersonUpdated))
	return nil
}

// Activate allows the person to receive new assignments
func (p *Person) Activate() error {
	if p.Active {
		return shared.NewDomainError(shared.CodeInvalidState, "Person is already active")
	}
	p.Active = true
	p.Touch()
	p.IncrementVersion()
	p.RecordEvent(NewPersonChangedEvent(p, EventTypePersonUpdated))
	return nil
}

// Deactivate stops the person from receiving new assignments.
// Existing assignments stay in place.
func (p *Person) Deactivate() error {
	if !p.Active {
		return shared.NewDomainError(shared.CodeInvalidState, "Person is already inactive")
	}
	p.Active = false
	p.Touch()
	p.IncrementVersion()
	p.RecordEvent(NewPersonChangedEvent(p, EventTypePersonUpdated))
	return nil
}

// CanReceive returns an error if the person cannot be issued new workwear
func (p *Person) CanReceive() error {
	if !p.Active {
		return shared.NewValidationError("Person " + p.Name + " is not active")
	}
	return nil
}

func (p *Person) apply(profile Profile) error {
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		return shared.NewValidationError("Person name is required")
	}
	p.Name = name
	p.Role = strings.TrimSpace(profile.Role)
	p.ShirtSize = strings.TrimSpace(profile.ShirtSize)
	p.TrousersSize = strings.TrimSpace(profile.TrousersSize)
	p.VestSize = strings.TrimSpace(profile.VestSize)
	p.Notes = profile.Notes
	p.UnitPrices = profile.UnitPrices
	return nil
}
