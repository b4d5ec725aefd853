package main

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"watchvault/models"
)

func openDB(cfg Config) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is not set")
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.AutoMigrate {
		if err := migrateDB(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// migrateDB migrates models individually so a failure on one doesn't block others.
func migrateDB(db *gorm.DB) error {
	for _, m := range []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.Watch{},
		&models.WatchPhoto{},
	} {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	return nil
}

// ensureUploadBase creates the base uploads directory.
func ensureUploadBase(base string) error {
	return os.MkdirAll(base, 0755)
}
