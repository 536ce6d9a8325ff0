package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	articleapp "github.com/mpvestiario/backend/internal/application/article"
	ledgerapp "github.com/mpvestiario/backend/internal/application/ledger"
	"github.com/mpvestiario/backend/internal/domain/article"
	"github.com/mpvestiario/backend/internal/domain/ledger"
	"github.com/mpvestiario/backend/internal/domain/personnel"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/mpvestiario/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupLedgerTestDB opens an in-memory SQLite database with the ledger schema.
// A single connection keeps every query on the same in-memory database.
func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.ArticleModel{},
		&models.PersonModel{},
		&models.AssignmentModel{},
		&models.StockMovementModel{},
	))
	return db
}

func seedArticle(t *testing.T, db *gorm.DB, name string, typ article.Type, stock int) *article.Article {
	t.Helper()
	a, err := article.NewArticle(article.Details{
		Name:      name,
		Group:     name,
		Size:      "M",
		Season:    article.SeasonSummer,
		Type:      typ,
		UnitPrice: decimal.NewFromFloat(12.5),
	}, stock)
	require.NoError(t, err)
	require.NoError(t, NewGormArticleRepository(db).Create(context.Background(), a))
	return a
}

func seedPerson(t *testing.T, db *gorm.DB, name string) *personnel.Person {
	t.Helper()
	p, err := personnel.NewPerson(personnel.Profile{Name: name, Role: "Porter"})
	require.NoError(t, err)
	require.NoError(t, NewGormPersonRepository(db).Create(context.Background(), p))
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	a, err := NewGormArticleRepository(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return a.Quantity
}

func TestGormArticleRepository_StockWrites(t *testing.T) {
	ctx := context.Background()

	t.Run("decrement succeeds while stock covers the quantity", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		repo := NewGormArticleRepository(db)
		a := seedArticle(t, db, "Polo", article.TypeShirt, 10)

		require.NoError(t, repo.DecrementQuantity(ctx, a.ID, 4))
		require.NoError(t, repo.DecrementQuantity(ctx, a.ID, 6))
		assert.Equal(t, 0, stockOf(t, db, a.ID))
	})

	t.Run("decrement past zero reports insufficient stock and writes nothing", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		repo := NewGormArticleRepository(db)
		a := seedArticle(t, db, "Polo", article.TypeShirt, 3)

		err := repo.DecrementQuantity(ctx, a.ID, 4)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 3, stockOf(t, db, a.ID))
	})

	t.Run("decrement of a missing article reports not found", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		err := NewGormArticleRepository(db).DecrementQuantity(ctx, uuid.New(), 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("increment restores stock", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		repo := NewGormArticleRepository(db)
		a := seedArticle(t, db, "Vest", article.TypeVest, 2)

		require.NoError(t, repo.IncrementQuantity(ctx, a.ID, 5))
		assert.Equal(t, 7, stockOf(t, db, a.ID))
		assert.ErrorIs(t, repo.IncrementQuantity(ctx, uuid.New(), 1), shared.ErrNotFound)
	})

	t.Run("set requires the expected quantity", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		repo := NewGormArticleRepository(db)
		a := seedArticle(t, db, "Trousers", article.TypeTrousers, 8)

		assert.ErrorIs(t, repo.SetQuantity(ctx, a.ID, 7, 2), shared.ErrConcurrencyConflict)
		require.NoError(t, repo.SetQuantity(ctx, a.ID, 8, 2))
		assert.Equal(t, 2, stockOf(t, db, a.ID))
		assert.ErrorIs(t, repo.SetQuantity(ctx, uuid.New(), 0, 1), shared.ErrNotFound)
	})

	t.Run("saving descriptive changes keeps the stored quantity", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		repo := NewGormArticleRepository(db)
		a := seedArticle(t, db, "Polo", article.TypeShirt, 10)

		// a stale copy carries quantity 10 while the row now holds 7
		require.NoError(t, repo.DecrementQuantity(ctx, a.ID, 3))
		require.NoError(t, a.Update(article.Details{
			Name:      "Polo Pique",
			Group:     "Polo",
			Size:      "L",
			Season:    article.SeasonWinter,
			Type:      article.TypeShirt,
			UnitPrice: decimal.NewFromInt(15),
		}))
		require.NoError(t, repo.Update(ctx, a))

		found, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Polo Pique", found.Name)
		assert.Equal(t, "L", found.Size)
		assert.Equal(t, 7, found.Quantity)
	})

	t.Run("updating a deleted article does not bring it back", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		repo := NewGormArticleRepository(db)
		a := seedArticle(t, db, "Polo", article.TypeShirt, 7)

		stale, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, a.ID))

		require.NoError(t, stale.Update(article.Details{
			Name:      "Polo Pique",
			Size:      "M",
			Season:    article.SeasonSummer,
			Type:      article.TypeShirt,
			UnitPrice: decimal.NewFromInt(15),
		}))
		assert.ErrorIs(t, repo.Update(ctx, stale), shared.ErrNotFound)

		var rows int64
		require.NoError(t, db.Model(&models.ArticleModel{}).Where("id = ?", a.ID).Count(&rows).Error)
		assert.Zero(t, rows)
	})
}

func TestGormPersonRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("writes deactivation", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		repo := NewGormPersonRepository(db)
		p := seedPerson(t, db, "Mario Rossi")

		require.NoError(t, p.Deactivate())
		require.NoError(t, repo.Update(ctx, p))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, found.Active)
	})

	t.Run("updating a deleted person does not bring it back", func(t *testing.T) {
		db := setupLedgerTestDB(t)
		repo := NewGormPersonRepository(db)
		p := seedPerson(t, db, "Mario Rossi")

		stale, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, p.ID))

		require.NoError(t, stale.Update(personnel.Profile{Name: "Mario Rossi", Role: "Autista"}))
		assert.ErrorIs(t, repo.Update(ctx, stale), shared.ErrNotFound)

		_, err = repo.FindByID(ctx, p.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormArticleRepository_FindAll(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormArticleRepository(db)
	ctx := context.Background()

	seedArticle(t, db, "Polo", article.TypeShirt, 2)
	seedArticle(t, db, "Cargo", article.TypeTrousers, 20)
	seedArticle(t, db, "Fleece", article.TypeVest, 5)

	t.Run("critical filter uses the threshold inclusively", func(t *testing.T) {
		filter := article.Filter{CriticalOnly: true, Threshold: 5}
		found, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "Fleece", found[0].Name)
		assert.Equal(t, "Polo", found[1].Name)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		found, err := repo.FindAll(ctx, article.Filter{Filter: shared.Filter{Search: "CARGO"}})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, article.TypeTrousers, found[0].Type)
	})

	t.Run("quantities cover every article", func(t *testing.T) {
		quantities, err := repo.Quantities(ctx)
		require.NoError(t, err)
		assert.Len(t, quantities, 3)
	})
}

func newSQLiteLedger(db *gorm.DB) *ledgerapp.StockLedger {
	return ledgerapp.NewStockLedger(
		NewGormTransactionScope(db),
		NewGormAssignmentRepository(db),
		NewGormStockMovementRepository(db),
	)
}

func newSQLiteReconciler(db *gorm.DB) *ledgerapp.Reconciler {
	return ledgerapp.NewReconciler(
		NewGormArticleRepository(db),
		NewGormAssignmentRepository(db),
		NewGormStockMovementRepository(db),
		nil,
	)
}

func TestStockLedger_WithGormTransactionScope(t *testing.T) {
	db := setupLedgerTestDB(t)
	ctx := context.Background()

	articles := articleapp.NewArticleService(NewGormArticleRepository(db), NewGormTransactionScope(db))
	created, err := articles.Create(ctx, articleapp.CreateArticleRequest{
		Name:     "Polo",
		Size:     "M",
		Season:   string(article.SeasonSummer),
		Type:     string(article.TypeShirt),
		Quantity: 10,
	})
	require.NoError(t, err)
	person := seedPerson(t, db, "Mario Rossi")
	svc := newSQLiteLedger(db)

	assigned, err := svc.CommitAssign(ctx, ledgerapp.CommitAssignRequest{
		PersonID:  person.ID,
		ArticleID: created.ID,
		Quantity:  4,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, assigned.ArticleStock)

	_, err = svc.CommitAssign(ctx, ledgerapp.CommitAssignRequest{
		PersonID:  person.ID,
		ArticleID: created.ID,
		Quantity:  8,
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 6, stockOf(t, db, created.ID))

	edited, err := svc.CommitEdit(ctx, assigned.Assignment.ID, ledgerapp.CommitEditRequest{Quantity: 6})
	require.NoError(t, err)
	assert.Equal(t, 4, edited.ArticleStock)

	deleted, err := svc.CommitDelete(ctx, assigned.Assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, deleted.RestoredQuantity)
	assert.Equal(t, 10, deleted.ArticleStock)

	_, err = svc.CommitDelete(ctx, assigned.Assignment.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, 10, stockOf(t, db, created.ID))

	movements, total, err := svc.ListMovements(ctx, created.ID, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, movements, 4)

	report, err := newSQLiteReconciler(db).Run(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, 1, report.Articles)
	assert.Empty(t, report.Drifts)
}

func TestStockLedger_RejectsInactivePersonWithoutWrites(t *testing.T) {
	db := setupLedgerTestDB(t)
	ctx := context.Background()

	a := seedArticle(t, db, "Polo", article.TypeShirt, 5)
	person := seedPerson(t, db, "Anna Bianchi")
	require.NoError(t, person.Deactivate())
	require.NoError(t, NewGormPersonRepository(db).Update(ctx, person))

	_, err := newSQLiteLedger(db).CommitAssign(ctx, ledgerapp.CommitAssignRequest{
		PersonID:  person.ID,
		ArticleID: a.ID,
		Quantity:  1,
	})
	require.Error(t, err)

	assert.Equal(t, 5, stockOf(t, db, a.ID))
	count, err := NewGormAssignmentRepository(db).CountByArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGormAssignmentRepository_ListHistory(t *testing.T) {
	db := setupLedgerTestDB(t)
	ctx := context.Background()
	repo := NewGormAssignmentRepository(db)

	polo := seedArticle(t, db, "Polo", article.TypeShirt, 100)
	vest := seedArticle(t, db, "Fleece", article.TypeVest, 100)
	mario := seedPerson(t, db, "Mario Rossi")
	anna := seedPerson(t, db, "Anna Bianchi")

	price := decimal.NewFromInt(9)
	insert := func(person *personnel.Person, art *article.Article, qty int, day time.Time, unitPrice *decimal.Decimal) *ledger.Assignment {
		a, err := ledger.NewAssignment(person.ID, art.ID, qty, day, unitPrice)
		require.NoError(t, err)
		require.NoError(t, repo.Insert(ctx, a))
		return a
	}
	insert(mario, polo, 2, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), &price)
	insert(mario, vest, 1, time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC), nil)
	insert(anna, polo, 3, time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC), nil)

	t.Run("joins names and orders newest first", func(t *testing.T) {
		entries, total, err := repo.ListHistory(ctx, ledger.HistoryFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, entries, 3)
		assert.Equal(t, "Anna Bianchi", entries[0].PersonName)
		assert.Equal(t, "Polo", entries[0].ArticleName)
		assert.Equal(t, "Fleece", entries[1].ArticleName)
		assert.Equal(t, "Mario Rossi", entries[2].PersonName)
	})

	t.Run("price snapshot wins over the current article price", func(t *testing.T) {
		entries, _, err := repo.ListHistory(ctx, ledger.HistoryFilter{PersonID: &mario.ID, ArticleID: &polo.ID})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, entries[0].UnitPrice.Equal(price))

		entries, _, err = repo.ListHistory(ctx, ledger.HistoryFilter{PersonID: &anna.ID})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, entries[0].UnitPrice.Equal(decimal.NewFromFloat(12.5)))
	})

	t.Run("to bound includes its whole day", func(t *testing.T) {
		from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
		entries, total, err := repo.ListHistory(ctx, ledger.HistoryFilter{From: &from, To: &to})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, entries, 2)
	})

	t.Run("pages the result", func(t *testing.T) {
		filter := ledger.HistoryFilter{}
		filter.Page = 2
		filter.PageSize = 2
		entries, total, err := repo.ListHistory(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, entries, 1)
		assert.Equal(t, "Mario Rossi", entries[0].PersonName)
	})

	t.Run("sums issued quantity per article", func(t *testing.T) {
		sums, err := repo.SumQuantityByArticle(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, sums[polo.ID])
		assert.Equal(t, 1, sums[vest.ID])
	})
}

func TestGormStockMovementRepository_Totals(t *testing.T) {
	db := setupLedgerTestDB(t)
	ctx := context.Background()
	repo := NewGormStockMovementRepository(db)
	articleID := uuid.New()

	appendMovement := func(typ ledger.MovementType, delta, balance int) {
		m, err := ledger.NewStockMovement(articleID, typ, delta, balance)
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, m))
	}
	appendMovement(ledger.MovementReceipt, 10, 10)
	appendMovement(ledger.MovementAssign, -4, 6)
	appendMovement(ledger.MovementEdit, 1, 7)
	appendMovement(ledger.MovementAdjust, -2, 5)

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, articleID, totals[0].ArticleID)
	assert.Equal(t, 5, totals[0].Net)
	assert.Equal(t, -3, totals[0].AssignmentNet)
}

func TestGormDashboardRepository(t *testing.T) {
	db := setupLedgerTestDB(t)
	ctx := context.Background()
	repo := NewGormDashboardRepository(db)

	polo := seedArticle(t, db, "Polo", article.TypeShirt, 4)
	seedArticle(t, db, "Cargo", article.TypeTrousers, 20)
	mario := seedPerson(t, db, "Mario Rossi")
	anna := seedPerson(t, db, "Anna Bianchi")
	require.NoError(t, anna.Deactivate())
	require.NoError(t, NewGormPersonRepository(db).Update(ctx, anna))

	a, err := ledger.NewAssignment(mario.ID, polo.ID, 3, time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	require.NoError(t, NewGormAssignmentRepository(db).Insert(ctx, a))

	totals, err := repo.Totals(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Articles)
	assert.Equal(t, int64(1), totals.ActiveStaff)
	assert.Equal(t, int64(1), totals.CriticalStock)
	assert.Equal(t, int64(24), totals.UnitsInStock)
	assert.Equal(t, int64(3), totals.UnitsIssued)
	assert.True(t, totals.StockValue.Equal(decimal.NewFromInt(300)))

	byType, err := repo.QuantityByType(ctx)
	require.NoError(t, err)
	require.Len(t, byType, 2)
	assert.Equal(t, string(article.TypeShirt), byType[0].Type)
	assert.Equal(t, int64(4), byType[0].Quantity)

	top, err := repo.TopAssigned(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Polo", top[0].ArticleName)
	assert.Equal(t, int64(3), top[0].Issued)

	monthly, err := repo.MonthlyDeliveries(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, "2026-05", monthly[0].Month)
	assert.Equal(t, int64(3), monthly[0].Quantity)
}
