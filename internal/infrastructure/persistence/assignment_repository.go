package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/ledger"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/mpvestiario/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAssignmentRepository implements ledger.AssignmentRepository using GORM
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GormAssignmentRepository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// FindByID finds an assignment by ID
func (r *GormAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Assignment, error) {
	var model models.AssignmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Insert stores a new assignment
func (r *GormAssignmentRepository) Insert(ctx context.Context, a *ledger.Assignment) error {
	return r.db.WithContext(ctx).Create(models.AssignmentModelFromDomain(a)).Error
}

// UpdateQuantity sets the quantity only if it still equals expected
func (r *GormAssignmentRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, expected, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.AssignmentModel{}).
		Where("id = ? AND quantity = ?", id, expected).
		Updates(map[string]any{
			"quantity":   quantity,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.AssignmentModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes an assignment. A second delete of the same row reports
// shared.ErrNotFound, which keeps a retried request from restoring stock twice.
func (r *GormAssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AssignmentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByArticle counts active assignments of an article
func (r *GormAssignmentRepository) CountByArticle(ctx context.Context, articleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AssignmentModel{}).
		Where("article_id = ?", articleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByPerson counts active assignments held by a person
func (r *GormAssignmentRepository) CountByPerson(ctx context.Context, personID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AssignmentModel{}).
		Where("person_id = ?", personID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumQuantityByArticle returns the issued quantity per article
func (r *GormAssignmentRepository) SumQuantityByArticle(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []struct {
		ArticleID uuid.UUID
		Total     int
	}
	if err := r.db.WithContext(ctx).
		Model(&models.AssignmentModel{}).
		Select("article_id, COALESCE(SUM(quantity), 0) AS total").
		Group("article_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.ArticleID] = row.Total
	}
	return out, nil
}

// historyRow is the scan target of the history join
type historyRow struct {
	ID           uuid.UUID
	PersonID     uuid.UUID
	PersonName   string
	ArticleID    uuid.UUID
	ArticleName  string
	ArticleGroup string
	ArticleSize  string
	PhotoURL     string
	Quantity     int
	UnitPrice    decimal.Decimal
	DeliveryDate time.Time
}

// ListHistory lists assignments joined with person and article details,
// newest delivery first. The To bound includes the whole day it falls on.
func (r *GormAssignmentRepository) ListHistory(ctx context.Context, filter ledger.HistoryFilter) ([]ledger.HistoryEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Table("assignments AS a").
		Joins("JOIN people AS p ON p.id = a.person_id").
		Joins("JOIN articles AS ar ON ar.id = a.article_id")
	if filter.PersonID != nil {
		query = query.Where("a.person_id = ?", *filter.PersonID)
	}
	if filter.ArticleID != nil {
		query = query.Where("a.article_id = ?", *filter.ArticleID)
	}
	if filter.From != nil {
		query = query.Where("a.delivery_date >= ?", startOfDay(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("a.delivery_date < ?", startOfDay(*filter.To).AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Select(`a.id, a.person_id, p.name AS person_name,
		a.article_id, ar.name AS article_name, ar.group_name AS article_group,
		ar.size AS article_size, ar.photo_url, a.quantity,
		COALESCE(a.unit_price, ar.unit_price) AS unit_price, a.delivery_date`).
		Order("a.delivery_date DESC").
		Order("a.created_at DESC")
	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	var rows []historyRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	entries := make([]ledger.HistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = ledger.HistoryEntry(row)
	}
	return entries, total, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Ensure GormAssignmentRepository implements ledger.AssignmentRepository
var _ ledger.AssignmentRepository = (*GormAssignmentRepository)(nil)
