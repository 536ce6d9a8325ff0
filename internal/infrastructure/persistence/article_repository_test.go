package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockArticleRepository creates a GormArticleRepository with a mocked SQL connection
func newMockArticleRepository(t *testing.T) (*GormArticleRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormArticleRepository(gormDB), mock, mockDB
}

func TestGormArticleRepository_DecrementQuantity_SQL(t *testing.T) {
	t.Run("issues a single guarded update", func(t *testing.T) {
		repo, mock, mockDB := newMockArticleRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectExec(`UPDATE "articles" SET "quantity"=quantity - \$1,"updated_at"=\$2 WHERE id = \$3 AND quantity >= \$4`).
			WithArgs(3, sqlmock.AnyArg(), id, 3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DecrementQuantity(context.Background(), id, 3)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("guard miss on an existing row is insufficient stock", func(t *testing.T) {
		repo, mock, mockDB := newMockArticleRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectExec(`UPDATE "articles" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "articles" WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repo.DecrementQuantity(context.Background(), id, 5)

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("guard miss on a missing row is not found", func(t *testing.T) {
		repo, mock, mockDB := newMockArticleRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectExec(`UPDATE "articles" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "articles"`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		err := repo.DecrementQuantity(context.Background(), id, 5)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates driver errors", func(t *testing.T) {
		repo, mock, mockDB := newMockArticleRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "articles" SET`).
			WillReturnError(errors.New("connection reset"))

		err := repo.DecrementQuantity(context.Background(), uuid.New(), 1)

		assert.EqualError(t, err, "connection reset")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormArticleRepository_FindByID_NotFound(t *testing.T) {
	repo, mock, mockDB := newMockArticleRepository(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "articles" WHERE id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(id, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	found, err := repo.FindByID(context.Background(), id)

	assert.Nil(t, found)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
