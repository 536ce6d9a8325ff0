package personnel

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/ledger"
	"github.com/mpvestiario/backend/internal/domain/personnel"
	"github.com/mpvestiario/backend/internal/domain/shared"
)

// PersonService handles staff management
type PersonService struct {
	personRepo     personnel.Repository
	assignmentRepo ledger.AssignmentRepository
	eventPublisher shared.EventPublisher
}

// NewPersonService creates a new PersonService
func NewPersonService(personRepo personnel.Repository, assignmentRepo ledger.AssignmentRepository) *PersonService {
	return &PersonService{
		personRepo:     personRepo,
		assignmentRepo: assignmentRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PersonService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new active person
func (s *PersonService) Create(ctx context.Context, req PersonRequest) (*PersonResponse, error) {
	p, err := personnel.NewPerson(req.profile())
	if err != nil {
		return nil, err
	}
	if err := s.personRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, p)
	response := ToPersonResponse(p)
	return &response, nil
}

// GetByID retrieves a person by ID
func (s *PersonService) GetByID(ctx context.Context, id uuid.UUID) (*PersonResponse, error) {
	p, err := s.personRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPersonResponse(p)
	return &response, nil
}

// List returns every matching person ordered by name.
// Staff lists are small, so the whole set is returned without paging.
func (s *PersonService) List(ctx context.Context, filter PersonListFilter) ([]PersonResponse, error) {
	domainFilter := personnel.Filter{
		Filter: shared.Filter{
			Page:   1,
			Search: strings.TrimSpace(filter.Search),
		},
		Active: filter.Active,
	}
	people, err := s.personRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(people, func(i, j int) bool {
		return shared.CompareNames(people[i].Name, people[j].Name) < 0
	})
	responses := make([]PersonResponse, len(people))
	for i := range people {
		responses[i] = ToPersonResponse(&people[i])
	}
	return responses, nil
}

// Update replaces a person's profile
func (s *PersonService) Update(ctx context.Context, id uuid.UUID, req PersonRequest) (*PersonResponse, error) {
	p, err := s.personRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Update(req.profile()); err != nil {
		return nil, err
	}
	if err := s.personRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, p)
	response := ToPersonResponse(p)
	return &response, nil
}

// Activate lets a person receive assignments again
func (s *PersonService) Activate(ctx context.Context, id uuid.UUID) (*PersonResponse, error) {
	return s.toggle(ctx, id, (*personnel.Person).Activate)
}

// Deactivate stops a person from receiving new assignments
func (s *PersonService) Deactivate(ctx context.Context, id uuid.UUID) (*PersonResponse, error) {
	return s.toggle(ctx, id, (*personnel.Person).Deactivate)
}

// Delete deletes a person who holds no workwear
func (s *PersonService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.personRepo.FindByID(ctx, id); err != nil {
		return err
	}
	held, err := s.assignmentRepo.CountByPerson(ctx, id)
	if err != nil {
		return err
	}
	if held > 0 {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Person holds %d active assignments; return them or deactivate the person", held))
	}
	if err := s.personRepo.Delete(ctx, id); err != nil {
		return err
	}
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, personnel.NewPersonDeletedEvent(id))
	}
	return nil
}

func (s *PersonService) toggle(ctx context.Context, id uuid.UUID, change func(*personnel.Person) error) (*PersonResponse, error) {
	p, err := s.personRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(p); err != nil {
		return nil, err
	}
	if err := s.personRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, p)
	response := ToPersonResponse(p)
	return &response, nil
}

func (s *PersonService) publishDomainEvents(ctx context.Context, p *personnel.Person) {
	if s.eventPublisher == nil {
		return
	}
	if events := p.PullEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
}
