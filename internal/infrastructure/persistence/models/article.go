package models

import (
	"github.com/mpvestiario/backend/internal/domain/article"
	"github.com/shopspring/decimal"
)

// ArticleModel is the persistence model for the Article aggregate root.
// The group column is named group_name because GROUP is a reserved word.
type ArticleModel struct {
	AggregateModel
	Name         string          `gorm:"type:varchar(200);not null;index"`
	GroupName    string          `gorm:"column:group_name;type:varchar(200);not null;default:'';index"`
	Size         string          `gorm:"type:varchar(20);not null;default:''"`
	Supplier     string          `gorm:"type:varchar(200);not null;default:''"`
	SupplierCode string          `gorm:"type:varchar(100);not null;default:'';index"`
	Season       string          `gorm:"type:varchar(20);not null;default:''"`
	Type         string          `gorm:"type:varchar(50);not null;default:'';index"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Quantity     int             `gorm:"not null;default:0;check:chk_articles_quantity,quantity >= 0"`
	PhotoURL     string          `gorm:"type:varchar(1024);not null;default:''"`
}

// TableName returns the table name for GORM
func (ArticleModel) TableName() string {
	return "articles"
}

// ToDomain converts the persistence model to a domain Article
func (m *ArticleModel) ToDomain() *article.Article {
	return &article.Article{
		BaseAggregateRoot: m.Aggregate(),
		Name:              m.Name,
		Group:             m.GroupName,
		Size:              m.Size,
		Supplier:          m.Supplier,
		SupplierCode:      m.SupplierCode,
		Season:            article.Season(m.Season),
		Type:              article.Type(m.Type),
		UnitPrice:         m.UnitPrice,
		Quantity:          m.Quantity,
		PhotoURL:          m.PhotoURL,
	}
}

// FromDomain populates the persistence model from a domain Article
func (m *ArticleModel) FromDomain(a *article.Article) {
	m.SetAggregate(a.BaseAggregateRoot)
	m.Name = a.Name
	m.GroupName = a.Group
	m.Size = a.Size
	m.Supplier = a.Supplier
	m.SupplierCode = a.SupplierCode
	m.Season = string(a.Season)
	m.Type = string(a.Type)
	m.UnitPrice = a.UnitPrice
	m.Quantity = a.Quantity
	m.PhotoURL = a.PhotoURL
}

// ArticleModelFromDomain creates a new persistence model from a domain Article
func ArticleModelFromDomain(a *article.Article) *ArticleModel {
	m := &ArticleModel{}
	m.FromDomain(a)
	return m
}

// ArticleDescriptiveColumns are the columns written when an existing article
// is saved. Stock is excluded: it only changes through conditional updates.
var ArticleDescriptiveColumns = []string{
	"name", "group_name", "size", "supplier", "supplier_code",
	"season", "type", "unit_price", "photo_url", "version", "updated_at",
}
