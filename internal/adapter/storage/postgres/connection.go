package postgres

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/forecourt/backoffice/internal/domain"
	"github.com/forecourt/backoffice/internal/observability/telemetry"
	"github.com/forecourt/backoffice/pkg/config"
)

// NewConnection initializes a new PostgreSQL connection using GORM
func NewConnection(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	logMode := logger.Warn
	if cfg.LogQueries {
		logMode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Set connection pool settings
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := instrumentLatency(db); err != nil {
		return nil, fmt.Errorf("failed to instrument database: %w", err)
	}

	log.Info("Successfully connected to PostgreSQL")
	return db, nil
}

// instrumentLatency registers statement callbacks that feed the database
// latency histogram.
func instrumentLatency(db *gorm.DB) error {
	const startKey = "telemetry:db_start"

	before := func(tx *gorm.DB) {
		tx.InstanceSet(startKey, time.Now())
	}
	after := func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(startKey)
		if !ok {
			return
		}
		if start, ok := v.(time.Time); ok {
			telemetry.DatabaseLatency.Observe(time.Since(start).Seconds())
		}
	}

	cb := db.Callback()
	for _, register := range []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("telemetry:create_start", before) },
		func() error { return cb.Create().After("gorm:create").Register("telemetry:create_done", after) },
		func() error { return cb.Query().Before("gorm:query").Register("telemetry:query_start", before) },
		func() error { return cb.Query().After("gorm:query").Register("telemetry:query_done", after) },
		func() error { return cb.Update().Before("gorm:update").Register("telemetry:update_start", before) },
		func() error { return cb.Update().After("gorm:update").Register("telemetry:update_done", after) },
		func() error { return cb.Delete().Before("gorm:delete").Register("telemetry:delete_start", before) },
		func() error { return cb.Delete().After("gorm:delete").Register("telemetry:delete_done", after) },
		func() error { return cb.Row().Before("gorm:row").Register("telemetry:row_start", before) },
		func() error { return cb.Row().After("gorm:row").Register("telemetry:row_done", after) },
		func() error { return cb.Raw().Before("gorm:raw").Register("telemetry:raw_start", before) },
		func() error { return cb.Raw().After("gorm:raw").Register("telemetry:raw_done", after) },
	} {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

// RunMigrations creates or updates the schema for every aggregate.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Tank{},
		&domain.Island{},
		&domain.Pump{},
		&domain.Nozzle{},
		&domain.ShiftReading{},
		&domain.NozzleReading{},
		&domain.Delivery{},
		&domain.CustomerAllocation{},
		&domain.Customer{},
		&domain.User{},
	)
}

// Close closes the underlying sql.DB connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
