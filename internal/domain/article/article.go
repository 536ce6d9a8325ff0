package article

import (
	"strings"

	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultCriticalThreshold is the stock level at or below which an article is flagged as critical
const DefaultCriticalThreshold = 5

// Season is the season an article is meant to be worn in
type Season string

const (
	SeasonSummer Season = "Summer"
	SeasonWinter Season = "Winter"
)

// IsValid returns true if the season is known
func (s Season) IsValid() bool {
	return s == SeasonSummer || s == SeasonWinter
}

// Type is the garment family of an article
type Type string

const (
	TypeShirt    Type = "T-shirt/Polo"
	TypeTrousers Type = "Trousers"
	TypeVest     Type = "Vest"
)

// IsValid returns true if the article type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeShirt, TypeTrousers, TypeVest:
		return true
	}
	return false
}

// Article is a stock-keeping unit of workwear: one garment in one size.
// Quantity is the authoritative count on hand and only changes through the
// stock ledger; every other field is edited through article management.
type Article struct {
	shared.BaseAggregateRoot
	Name         string
	Group        string
	Size         string
	Supplier     string
	SupplierCode string
	Season       Season
	Type         Type
	UnitPrice    decimal.Decimal
	Quantity     int
	PhotoURL     string
}

// Details holds the descriptive, user-editable fields of an article
type Details struct {
	Name         string
	Group        string
	Size         string
	Supplier     string
	SupplierCode string
	Season       Season
	Type         Type
	UnitPrice    decimal.Decimal
	PhotoURL     string
}

// NewArticle creates an article with its opening stock
func NewArticle(details Details, openingStock int) (*Article, error) {
	if openingStock < 0 {
		return nil, shared.NewValidationError("Opening stock cannot be negative")
	}
	a := &Article{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Quantity:          openingStock,
	}
	if err := a.apply(details); err != nil {
		return nil, err
	}
	a.RecordEvent(NewArticleCreatedEvent(a))
	return a, nil
}

// Update replaces the descriptive fields. Quantity is left untouched.
func (a *Article) Update(details Details) error {
	if err := a.apply(details); err != nil {
		return err
	}
	a.Touch()
	a.IncrementVersion()
	a.RecordEvent(NewArticleUpdatedEvent(a))
	return nil
}

// SetPhoto records the public URL of the article photo
func (a *Article) SetPhoto(url string) {
	a.PhotoURL = url
	a.Touch()
	a.IncrementVersion()
	a.RecordEvent(NewArticleUpdatedEvent(a))
}

func (a *Article) apply(d Details) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewValidationError("Article name is required")
	}
	if d.Season != "" && !d.Season.IsValid() {
		return shared.NewValidationError("Season must be Summer or Winter")
	}
	if d.Type != "" && !d.Type.IsValid() {
		return shared.NewValidationError("Unknown article type: " + string(d.Type))
	}
	if d.UnitPrice.IsNegative() {
		return shared.NewValidationError("Unit price cannot be negative")
	}

	a.Name = name
	a.Group = strings.TrimSpace(d.Group)
	a.Size = strings.TrimSpace(d.Size)
	a.Supplier = strings.TrimSpace(d.Supplier)
	a.SupplierCode = strings.TrimSpace(d.SupplierCode)
	a.Season = d.Season
	a.Type = d.Type
	a.UnitPrice = d.UnitPrice
	a.PhotoURL = d.PhotoURL
	return nil
}

// GroupKey returns the key used to gather size variants of the same garment.
// Articles without an explicit group fall back to their name.
func (a *Article) GroupKey() string {
	if a.Group != "" {
		return a.Group
	}
	return a.Name
}

// IsCritical reports whether stock is at or below the threshold
func (a *Article) IsCritical(threshold int) bool {
	return a.Quantity <= threshold
}

// StockValue returns unit price times quantity on hand
func (a *Article) StockValue() decimal.Decimal {
	return a.UnitPrice.Mul(decimal.NewFromInt(int64(a.Quantity)))
}

// CanIssue reports whether qty units can be taken from current stock
func (a *Article) CanIssue(qty int) bool {
	return qty > 0 && qty <= a.Quantity
}
