package models

import "github.com/mpvestiario/backend/internal/domain/personnel"

// PersonModel is the persistence model for the Person aggregate root
type PersonModel struct {
	AggregateModel
	Name         string `gorm:"type:varchar(200);not null;index"`
	Role         string `gorm:"type:varchar(100);not null;default:''"`
	ShirtSize    string `gorm:"type:varchar(20);not null;default:''"`
	TrousersSize string `gorm:"type:varchar(20);not null;default:''"`
	VestSize     string `gorm:"type:varchar(20);not null;default:''"`
	Notes        string `gorm:"type:text;not null;default:''"`
	UnitPrices   string `gorm:"type:text;not null;default:''"`
	Active       bool   `gorm:"not null;default:true;index"`
}

// PersonUpdateColumns are written when an existing person is updated.
// Listing them keeps zero values such as active=false in the UPDATE.
var PersonUpdateColumns = []string{
	"name", "role", "shirt_size", "trousers_size", "vest_size",
	"notes", "unit_prices", "active", "version", "updated_at",
}

// TableName returns the table name for GORM
func (PersonModel) TableName() string {
	return "people"
}

// ToDomain converts the persistence model to a domain Person
func (m *PersonModel) ToDomain() *personnel.Person {
	return &personnel.Person{
		BaseAggregateRoot: m.Aggregate(),
		Name:              m.Name,
		Role:              m.Role,
		ShirtSize:         m.ShirtSize,
		TrousersSize:      m.TrousersSize,
		VestSize:          m.VestSize,
		Notes:             m.Notes,
		UnitPrices:        m.UnitPrices,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Person
func (m *PersonModel) FromDomain(p *personnel.Person) {
	m.SetAggregate(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Role = p.Role
	m.ShirtSize = p.ShirtSize
	m.TrousersSize = p.TrousersSize
	m.VestSize = p.VestSize
	m.Notes = p.Notes
	m.UnitPrices = p.UnitPrices
	m.Active = p.Active
}

// PersonModelFromDomain creates a new persistence model from a domain Person
func PersonModelFromDomain(p *personnel.Person) *PersonModel {
	m := &PersonModel{}
	m.FromDomain(p)
	return m
}
