package personnel

import (
	"time"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/personnel"
)

// PersonRequest creates or replaces a person's profile
type PersonRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Role         string `json:"role" binding:"max=100"`
	ShirtSize    string `json:"shirt_size" binding:"max=20"`
	TrousersSize string `json:"trousers_size" binding:"max=20"`
	VestSize     string `json:"vest_size" binding:"max=20"`
	Notes        string `json:"notes" binding:"max=2000"`
	// UnitPrices is a free-text note of agreed prices for this person
	UnitPrices string `json:"unit_prices" binding:"max=2000"`
}

// PersonListFilter holds person list query parameters
type PersonListFilter struct {
	Search string `form:"search"`
	Active *bool  `form:"active"`
}

// PersonResponse represents a person in API responses
type PersonResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role,omitempty"`
	ShirtSize    string    `json:"shirt_size,omitempty"`
	TrousersSize string    `json:"trousers_size,omitempty"`
	VestSize     string    `json:"vest_size,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	UnitPrices   string    `json:"unit_prices,omitempty"`
	Active       bool      `json:"active"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToPersonResponse converts a domain person to its response form
func ToPersonResponse(p *personnel.Person) PersonResponse {
	return PersonResponse{
		ID:           p.ID,
		Name:         p.Name,
		Role:         p.Role,
		ShirtSize:    p.ShirtSize,
		TrousersSize: p.TrousersSize,
		VestSize:     p.VestSize,
		Notes:        p.Notes,
		UnitPrices:   p.UnitPrices,
		Active:       p.Active,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r PersonRequest) profile() personnel.Profile {
	return personnel.Profile{
		Name:         r.Name,
		Role:         r.Role,
		ShirtSize:    r.ShirtSize,
		TrousersSize: r.TrousersSize,
		VestSize:     r.VestSize,
		Notes:        r.Notes,
		UnitPrices:   r.UnitPrices,
	}
}
