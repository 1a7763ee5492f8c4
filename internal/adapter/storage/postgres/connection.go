package postgres

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/seu-repo/ocpp-csms/internal/domain"
)

// gormConfig enables driver error translation so unique-key violations
// surface as gorm.ErrDuplicatedKey and can be mapped to conflicts.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
}

// NewConnection initializes a new PostgreSQL connection using GORM.
func NewConnection(url string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(url), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("Successfully connected to PostgreSQL")
	return db, nil
}

// RunMigrations creates or updates the schema for all core entities.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.IdTag{},
		&domain.User{},
		&domain.Transaction{},
		&domain.MeterSample{},
		&domain.PricingRule{},
		&domain.BaseRate{},
		&domain.CardAccount{},
		&domain.Payment{},
		&domain.Reservation{},
		&domain.StatusLog{},
	)
}

// Close releases the underlying sql.DB pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
