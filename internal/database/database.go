package database

import (
	"fmt"

	"github.com/inkwell-cms/core/internal/config"
	"github.com/inkwell-cms/core/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a MySQL connection and optionally runs auto-migration.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsDev() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               cfg.DSN,
		DefaultStringSize: 191,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if autoMigrate {
		if err := migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	return db, nil
}

// migrate runs GORM auto-migration for all models, then ensures the
// full-text index backing the search predicate exists.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.UserModel{},
		&models.CategoryModel{},
		&models.TagModel{},
		&models.PostModel{},
	); err != nil {
		return err
	}

	if db.Dialector.Name() == "mysql" {
		var count int64
		db.Raw(`SELECT COUNT(1) FROM information_schema.statistics
			WHERE table_schema = DATABASE() AND table_name = 'posts' AND index_name = 'idx_posts_fulltext'`).
			Scan(&count)
		if count == 0 {
			if err := db.Exec("CREATE FULLTEXT INDEX idx_posts_fulltext ON posts (title, content)").Error; err != nil {
				return err
			}
		}
	}

	return nil
}
