package personnel

import (
	"context"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/shared"
)

// Filter narrows person list queries
type Filter struct {
	shared.Filter
	// Active filters by active flag when non-nil
	Active *bool
}

// Repository defines persistence for people
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Person, error)
	FindAll(ctx context.Context, filter Filter) ([]Person, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Create(ctx context.Context, p *Person) error
	// Update returns shared.ErrNotFound when the person no longer exists
	Update(ctx context.Context, p *Person) error
	Delete(ctx context.Context, id uuid.UUID) error
}
