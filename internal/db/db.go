package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campus-reveal-backend/config"
	"campus-reveal-backend/internal/model"
)

// Init opens the configured database and, when enabled, creates missing
// tables and indexes.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if cfg.AutoMigrate {
		zap.S().Infow("creating missing tables", "driver", cfg.Driver)
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	zap.S().Infow("database initialized", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates the colleges and reviews tables if they do not exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.College{}, &model.Review{}); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}
