package model

import (
	"time"

	"github.com/google/uuid"
)

type File struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ProjectID    uuid.UUID  `gorm:"column:project_id;type:uuid;not null;index"`
	FolderID     *uuid.UUID `gorm:"column:folder_id;type:uuid;index"`
	OriginalName string     `gorm:"column:original_name;not null"`
	StoredName   string     `gorm:"column:stored_name;not null"`
	FilePath     string     `gorm:"column:file_path;not null"`
	Size         int64      `gorm:"column:size;not null"`
	MimeType     string     `gorm:"column:mime_type;not null"`
	UploadDate   time.Time  `gorm:"column:upload_date;autoCreateTime"`
}
