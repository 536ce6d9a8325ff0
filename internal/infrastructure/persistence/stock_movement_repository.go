package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/ledger"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/mpvestiario/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements ledger.StockMovementRepository using GORM.
// The journal is append-only: there is no update or delete.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Append records a movement
func (r *GormStockMovementRepository) Append(ctx context.Context, m *ledger.StockMovement) error {
	return r.db.WithContext(ctx).Create(models.StockMovementModelFromDomain(m)).Error
}

// FindByArticle lists movements of an article, newest first
func (r *GormStockMovementRepository) FindByArticle(ctx context.Context, articleID uuid.UUID, filter shared.Filter) ([]ledger.StockMovement, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockMovementModel{}).
		Where("article_id = ?", articleID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(movementSort.order(filter))
	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}

	var rows []models.StockMovementModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	movements := make([]ledger.StockMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, total, nil
}

// Totals returns the summed deltas per article, split into the full journal
// and the part caused by the assignment lifecycle
func (r *GormStockMovementRepository) Totals(ctx context.Context) ([]ledger.MovementTotals, error) {
	var rows []struct {
		ArticleID     uuid.UUID
		Net           int
		AssignmentNet int
	}
	if err := r.db.WithContext(ctx).
		Model(&models.StockMovementModel{}).
		Select(`article_id,
			COALESCE(SUM(delta), 0) AS net,
			COALESCE(SUM(CASE WHEN type IN ? THEN delta ELSE 0 END), 0) AS assignment_net`,
			assignmentMovementTypes()).
		Group("article_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	totals := make([]ledger.MovementTotals, len(rows))
	for i, row := range rows {
		totals[i] = ledger.MovementTotals{
			ArticleID:     row.ArticleID,
			Net:           row.Net,
			AssignmentNet: row.AssignmentNet,
		}
	}
	return totals, nil
}

func assignmentMovementTypes() []string {
	return []string{
		string(ledger.MovementAssign),
		string(ledger.MovementEdit),
		string(ledger.MovementReturn),
	}
}

// Ensure GormStockMovementRepository implements ledger.StockMovementRepository
var _ ledger.StockMovementRepository = (*GormStockMovementRepository)(nil)
