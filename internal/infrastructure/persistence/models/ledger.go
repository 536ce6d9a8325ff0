package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// AssignmentModel is the persistence model for the Assignment aggregate root
type AssignmentModel struct {
	AggregateModel
	PersonID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	ArticleID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Quantity     int              `gorm:"not null;check:chk_assignments_quantity,quantity > 0"`
	DeliveryDate time.Time        `gorm:"not null;index"`
	UnitPrice    *decimal.Decimal `gorm:"type:decimal(12,2)"`
}

// TableName returns the table name for GORM
func (AssignmentModel) TableName() string {
	return "assignments"
}

// ToDomain converts the persistence model to a domain Assignment
func (m *AssignmentModel) ToDomain() *ledger.Assignment {
	return &ledger.Assignment{
		BaseAggregateRoot: m.Aggregate(),
		PersonID:          m.PersonID,
		ArticleID:         m.ArticleID,
		Quantity:          m.Quantity,
		DeliveryDate:      m.DeliveryDate,
		UnitPrice:         m.UnitPrice,
	}
}

// FromDomain populates the persistence model from a domain Assignment
func (m *AssignmentModel) FromDomain(a *ledger.Assignment) {
	m.SetAggregate(a.BaseAggregateRoot)
	m.PersonID = a.PersonID
	m.ArticleID = a.ArticleID
	m.Quantity = a.Quantity
	m.DeliveryDate = a.DeliveryDate
	m.UnitPrice = a.UnitPrice
}

// AssignmentModelFromDomain creates a new persistence model from a domain Assignment
func AssignmentModelFromDomain(a *ledger.Assignment) *AssignmentModel {
	m := &AssignmentModel{}
	m.FromDomain(a)
	return m
}

// StockMovementModel is the persistence model for stock journal entries.
// Rows are only ever inserted.
type StockMovementModel struct {
	BaseModel
	ArticleID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_stock_movements_article_created,priority:1"`
	AssignmentID *uuid.UUID `gorm:"type:uuid;index"`
	Type         string     `gorm:"type:varchar(20);not null"`
	Delta        int        `gorm:"not null"`
	Balance      int        `gorm:"not null"`
	Note         string     `gorm:"type:varchar(500);not null;default:''"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() *ledger.StockMovement {
	return &ledger.StockMovement{
		BaseEntity:   m.Entity(),
		ArticleID:    m.ArticleID,
		AssignmentID: m.AssignmentID,
		Type:         ledger.MovementType(m.Type),
		Delta:        m.Delta,
		Balance:      m.Balance,
		Note:         m.Note,
	}
}

// FromDomain populates the persistence model from a domain StockMovement
func (m *StockMovementModel) FromDomain(s *ledger.StockMovement) {
	m.SetEntity(s.BaseEntity)
	m.ArticleID = s.ArticleID
	m.AssignmentID = s.AssignmentID
	m.Type = string(s.Type)
	m.Delta = s.Delta
	m.Balance = s.Balance
	m.Note = s.Note
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement
func StockMovementModelFromDomain(s *ledger.StockMovement) *StockMovementModel {
	m := &StockMovementModel{}
	m.FromDomain(s)
	return m
}
