package database

import (
	"github.com/filerunner/backend/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for all domain tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Project{},
		&model.Folder{},
		&model.File{},
	)
}
