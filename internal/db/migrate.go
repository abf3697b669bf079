package db

import (
	"fmt"

	"github.com/zulandar/ensemble/internal/config"
	"github.com/zulandar/ensemble/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model Ensemble persists.
func AllModels() []interface{} {
	return []interface{}{
		&models.Setting{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// Open connects with cfg and migrates all tables.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gdb, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}
