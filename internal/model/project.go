package model

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	APIKey    uuid.UUID `gorm:"column:api_key;type:uuid;not null;uniqueIndex"`
	IsPublic  bool      `gorm:"column:is_public;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

type Folder struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;uniqueIndex:idx_folders_project_path"`
	Path      string    `gorm:"column:path;not null;uniqueIndex:idx_folders_project_path"`
	IsPublic  bool      `gorm:"column:is_public;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at"`
}
