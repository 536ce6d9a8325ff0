package persistence

import (
	"context"
	"time"

	"github.com/mpvestiario/backend/internal/application/dashboard"
	"github.com/mpvestiario/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormDashboardRepository runs the dashboard aggregate queries
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// Totals returns the headline counters
func (r *GormDashboardRepository) Totals(ctx context.Context, criticalThreshold int) (*dashboard.Totals, error) {
	var stock struct {
		Articles      int64
		CriticalStock int64
		StockValue    decimal.Decimal
		UnitsInStock  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ArticleModel{}).
		Select(`COUNT(*) AS articles,
			COALESCE(SUM(CASE WHEN quantity <= ? THEN 1 ELSE 0 END), 0) AS critical_stock,
			COALESCE(SUM(unit_price * quantity), 0) AS stock_value,
			COALESCE(SUM(quantity), 0) AS units_in_stock`, criticalThreshold).
		Scan(&stock).Error; err != nil {
		return nil, err
	}

	var activeStaff int64
	if err := r.db.WithContext(ctx).
		Model(&models.PersonModel{}).
		Where("active = ?", true).
		Count(&activeStaff).Error; err != nil {
		return nil, err
	}

	var issued struct {
		Total int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.AssignmentModel{}).
		Select("COALESCE(SUM(quantity), 0) AS total").
		Scan(&issued).Error; err != nil {
		return nil, err
	}

	return &dashboard.Totals{
		Articles:      stock.Articles,
		ActiveStaff:   activeStaff,
		CriticalStock: stock.CriticalStock,
		StockValue:    stock.StockValue,
		UnitsInStock:  stock.UnitsInStock,
		UnitsIssued:   issued.Total,
	}, nil
}

// QuantityByType returns stock on hand per article type
func (r *GormDashboardRepository) QuantityByType(ctx context.Context) ([]dashboard.TypeQuantity, error) {
	var rows []dashboard.TypeQuantity
	if err := r.db.WithContext(ctx).
		Model(&models.ArticleModel{}).
		Select("type, COALESCE(SUM(quantity), 0) AS quantity").
		Group("type").
		Order("type ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TopAssigned returns the articles with the most units issued
func (r *GormDashboardRepository) TopAssigned(ctx context.Context, limit int) ([]dashboard.ArticleUsage, error) {
	var rows []dashboard.ArticleUsage
	if err := r.db.WithContext(ctx).
		Table("assignments AS a").
		Joins("JOIN articles AS ar ON ar.id = a.article_id").
		Select("ar.id AS article_id, ar.name AS article_name, ar.size AS size, SUM(a.quantity) AS issued").
		Group("ar.id, ar.name, ar.size").
		Order("issued DESC").
		Order("ar.name ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MonthlyDeliveries returns units delivered per month since the given time
func (r *GormDashboardRepository) MonthlyDeliveries(ctx context.Context, since time.Time) ([]dashboard.MonthlyDeliveries, error) {
	month := "to_char(delivery_date, 'YYYY-MM')"
	if r.db.Dialector.Name() == "sqlite" {
		month = "strftime('%Y-%m', delivery_date)"
	}

	var rows []dashboard.MonthlyDeliveries
	if err := r.db.WithContext(ctx).
		Model(&models.AssignmentModel{}).
		Select(month+" AS month, COALESCE(SUM(quantity), 0) AS quantity").
		Where("delivery_date >= ?", since).
		Group("month").
		Order("month ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure GormDashboardRepository implements dashboard.Reader
var _ dashboard.Reader = (*GormDashboardRepository)(nil)
