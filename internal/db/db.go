package db

import (
	"log"

	"go-catalog/internal/catalog"
	"go-catalog/internal/config"
	"go-catalog/internal/review"
	"go-catalog/internal/user"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	// Auto-migrate identity model
	if err := db.AutoMigrate(&user.User{}); err != nil {
		return err
	}

	// Auto-migrate catalog models
	if err := db.AutoMigrate(&catalog.Category{}, &catalog.Genre{}, &catalog.Title{}); err != nil {
		return err
	}

	// Auto-migrate feedback models
	if err := db.AutoMigrate(&review.Review{}, &review.Comment{}); err != nil {
		return err
	}

	DB = db
	log.Printf("Database connected and migrated")
	return nil
}
