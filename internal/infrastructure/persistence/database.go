package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mpvestiario/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM handle and its connection pool
type Database struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// NewDatabase opens the ledger database, sizes the pool from cfg and
// verifies the connection. A nil gormLogger keeps GORM silent.
func NewDatabase(cfg *config.DatabaseConfig, gormLogger logger.Interface) (*Database, error) {
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	configurePool(sqlDB, cfg)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Database{DB: db, sqlDB: sqlDB}, nil
}

func configurePool(sqlDB *sql.DB, cfg *config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

// SQL exposes the pool for components that speak database/sql
func (d *Database) SQL() *sql.DB {
	return d.sqlDB
}

// PingContext checks the database is reachable
func (d *Database) PingContext(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}

// PoolStats is a zap object marshaller over the pool counters
type PoolStats sql.DBStats

// MarshalLogObject implements zapcore.ObjectMarshaler
func (s PoolStats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("max_open", s.MaxOpenConnections)
	enc.AddInt("open", s.OpenConnections)
	enc.AddInt("in_use", s.InUse)
	enc.AddInt("idle", s.Idle)
	enc.AddInt64("wait_count", s.WaitCount)
	enc.AddDuration("wait_duration", s.WaitDuration)
	return nil
}

// Stats returns a snapshot of the pool counters
func (d *Database) Stats() PoolStats {
	return PoolStats(d.sqlDB.Stats())
}

// Close logs the final pool counters and closes every connection
func (d *Database) Close(log *zap.Logger) error {
	if log != nil {
		log.Info("Closing database", zap.Object("pool", d.Stats()))
	}
	return d.sqlDB.Close()
}
