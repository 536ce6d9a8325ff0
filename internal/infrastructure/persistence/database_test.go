package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mpvestiario/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return &Database{DB: gormDB, sqlDB: mockDB}, mock
}

func TestDatabase_PingContext(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		db, mock := newMockDatabase(t)
		mock.ExpectPing()

		assert.NoError(t, db.PingContext(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unreachable", func(t *testing.T) {
		db, mock := newMockDatabase(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		assert.Error(t, db.PingContext(context.Background()))
	})
}

func TestDatabase_CloseLogsPoolStats(t *testing.T) {
	db, mock := newMockDatabase(t)
	mock.ExpectClose()

	core, logs := observer.New(zapcore.InfoLevel)
	require.NoError(t, db.Close(zap.New(core)))
	assert.NoError(t, mock.ExpectationsWereMet())

	entries := logs.FilterMessage("Closing database").All()
	require.Len(t, entries, 1)
	pool, ok := entries[0].ContextMap()["pool"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, pool, "open")
	assert.Contains(t, pool, "wait_count")
}

func TestDatabase_CloseWithoutLogger(t *testing.T) {
	db, mock := newMockDatabase(t)
	mock.ExpectClose()

	assert.NoError(t, db.Close(nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigurePool(t *testing.T) {
	db, _ := newMockDatabase(t)

	configurePool(db.SQL(), &config.DatabaseConfig{MaxOpenConns: 7, MaxIdleConns: 3})
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)

	// zero leaves the current limit alone
	configurePool(db.SQL(), &config.DatabaseConfig{})
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}
