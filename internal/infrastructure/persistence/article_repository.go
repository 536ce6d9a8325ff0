package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/article"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/mpvestiario/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormArticleRepository implements article.Repository using GORM
type GormArticleRepository struct {
	db *gorm.DB
}

// NewGormArticleRepository creates a new GormArticleRepository
func NewGormArticleRepository(db *gorm.DB) *GormArticleRepository {
	return &GormArticleRepository{db: db}
}

// FindByID finds an article by its ID
func (r *GormArticleRepository) FindByID(ctx context.Context, id uuid.UUID) (*article.Article, error) {
	var model models.ArticleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySupplierCode finds an article by the supplier's code
func (r *GormArticleRepository) FindBySupplierCode(ctx context.Context, code string) (*article.Article, error) {
	var model models.ArticleModel
	if err := r.db.WithContext(ctx).
		Where("supplier_code = ?", code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all articles matching the filter
func (r *GormArticleRepository) FindAll(ctx context.Context, filter article.Filter) ([]article.Article, error) {
	var rows []models.ArticleModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ArticleModel{}), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	articles := make([]article.Article, len(rows))
	for i := range rows {
		articles[i] = *rows[i].ToDomain()
	}
	return articles, nil
}

// Count counts articles matching the filter
func (r *GormArticleRepository) Count(ctx context.Context, filter article.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ArticleModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Quantities returns the current stock of every article
func (r *GormArticleRepository) Quantities(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []struct {
		ID       uuid.UUID
		Quantity int
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ArticleModel{}).
		Select("id, quantity").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Quantity
	}
	return out, nil
}

// Create inserts a new article, opening stock included
func (r *GormArticleRepository) Create(ctx context.Context, a *article.Article) error {
	return r.db.WithContext(ctx).Create(models.ArticleModelFromDomain(a)).Error
}

// Update writes the descriptive fields of an existing article.
// The quantity column is left alone, and a missing row is never re-inserted.
func (r *GormArticleRepository) Update(ctx context.Context, a *article.Article) error {
	model := models.ArticleModelFromDomain(a)
	result := r.db.WithContext(ctx).
		Model(model).
		Select(models.ArticleDescriptiveColumns).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes an article
func (r *GormArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ArticleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DecrementQuantity subtracts qty in a single guarded statement:
//
//	UPDATE articles SET quantity = quantity - ? WHERE id = ? AND quantity >= ?
//
// The row lock taken by the UPDATE serialises concurrent writers, and the
// guard is re-evaluated against the committed value, so stock never goes
// below zero.
func (r *GormArticleRepository) DecrementQuantity(ctx context.Context, id uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.ArticleModel{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOr(ctx, id, shared.ErrInsufficientStock)
	}
	return nil
}

// IncrementQuantity adds qty back to stock
func (r *GormArticleRepository) IncrementQuantity(ctx context.Context, id uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.ArticleModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", qty),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetQuantity overwrites stock only if it still equals expected
func (r *GormArticleRepository) SetQuantity(ctx context.Context, id uuid.UUID, expected, quantity int) error {
	if quantity < 0 {
		return shared.NewValidationError("Stock cannot be negative")
	}
	result := r.db.WithContext(ctx).
		Model(&models.ArticleModel{}).
		Where("id = ? AND quantity = ?", id, expected).
		Updates(map[string]any{
			"quantity":   quantity,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOr(ctx, id, shared.ErrConcurrencyConflict)
	}
	return nil
}

// missingOr tells a guard failure apart from a missing row
func (r *GormArticleRepository) missingOr(ctx context.Context, id uuid.UUID, guardErr error) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ArticleModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return guardErr
}

// applyFilter applies filter options to the query
func (r *GormArticleRepository) applyFilter(query *gorm.DB, filter article.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	return query.Order(articleSort.order(filter.Filter)).Order("size ASC")
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormArticleRepository) applyFilterWithoutPagination(query *gorm.DB, filter article.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(group_name) LIKE ? OR LOWER(supplier) LIKE ? OR LOWER(supplier_code) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.Season != "" {
		query = query.Where("season = ?", string(filter.Season))
	}
	if filter.Group != "" {
		query = query.Where("group_name = ?", filter.Group)
	}
	if filter.CriticalOnly {
		query = query.Where("quantity <= ?", filter.Threshold)
	}
	return query
}

// Ensure GormArticleRepository implements article.Repository
var _ article.Repository = (*GormArticleRepository)(nil)
