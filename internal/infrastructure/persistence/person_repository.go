package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/personnel"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/mpvestiario/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPersonRepository implements personnel.Repository using GORM
type GormPersonRepository struct {
	db *gorm.DB
}

// NewGormPersonRepository creates a new GormPersonRepository
func NewGormPersonRepository(db *gorm.DB) *GormPersonRepository {
	return &GormPersonRepository{db: db}
}

// FindByID finds a person by ID
func (r *GormPersonRepository) FindByID(ctx context.Context, id uuid.UUID) (*personnel.Person, error) {
	var model models.PersonModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds people matching the filter. PageSize 0 returns every match.
func (r *GormPersonRepository) FindAll(ctx context.Context, filter personnel.Filter) ([]personnel.Person, error) {
	var rows []models.PersonModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PersonModel{}), filter)
	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if err := query.Order(personSort.order(filter.Filter)).Find(&rows).Error; err != nil {
		return nil, err
	}
	people := make([]personnel.Person, len(rows))
	for i := range rows {
		people[i] = *rows[i].ToDomain()
	}
	return people, nil
}

// Count counts people matching the filter
func (r *GormPersonRepository) Count(ctx context.Context, filter personnel.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PersonModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new person
func (r *GormPersonRepository) Create(ctx context.Context, p *personnel.Person) error {
	return r.db.WithContext(ctx).Create(models.PersonModelFromDomain(p)).Error
}

// Update writes an existing person. A missing row is never re-inserted.
func (r *GormPersonRepository) Update(ctx context.Context, p *personnel.Person) error {
	model := models.PersonModelFromDomain(p)
	result := r.db.WithContext(ctx).
		Model(model).
		Select(models.PersonUpdateColumns).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a person
func (r *GormPersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PersonModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormPersonRepository) applyFilter(query *gorm.DB, filter personnel.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(role) LIKE ?", pattern, pattern)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	return query
}

// Ensure GormPersonRepository implements personnel.Repository
var _ personnel.Repository = (*GormPersonRepository)(nil)
