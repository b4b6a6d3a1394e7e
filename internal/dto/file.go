package dto

import (
	"time"

	"github.com/filerunner/backend/internal/model"
	"github.com/filerunner/backend/internal/repository"
	"github.com/google/uuid"
)

type UploadResponse struct {
	ID           uuid.UUID  `json:"id"`
	OriginalName string     `json:"original_name"`
	StoredName   string     `json:"stored_name"`
	Size         int64      `json:"size"`
	MimeType     string     `json:"mime_type"`
	FolderPath   *string    `json:"folder_path,omitempty"`
	FolderID     *uuid.UUID `json:"folder_id,omitempty"`
	UploadDate   time.Time  `json:"upload_date"`
}

type FileMetadata struct {
	ID           uuid.UUID  `json:"id"`
	ProjectID    uuid.UUID  `json:"project_id"`
	OriginalName string     `json:"original_name"`
	StoredName   string     `json:"stored_name"`
	Size         int64      `json:"size"`
	MimeType     string     `json:"mime_type"`
	FolderID     *uuid.UUID `json:"folder_id,omitempty"`
	FolderPath   *string    `json:"folder_path,omitempty"`
	UploadDate   time.Time  `json:"upload_date"`
}

func NewFileMetadata(file *model.File, folderPath *string) FileMetadata {
	return FileMetadata{
		ID:           file.ID,
		ProjectID:    file.ProjectID,
		OriginalName: file.OriginalName,
		StoredName:   file.StoredName,
		Size:         file.Size,
		MimeType:     file.MimeType,
		FolderID:     file.FolderID,
		FolderPath:   folderPath,
		UploadDate:   file.UploadDate,
	}
}

func NewFileMetadataList(files []repository.FileWithFolder) []FileMetadata {
	out := make([]FileMetadata, 0, len(files))
	for i := range files {
		out = append(out, NewFileMetadata(&files[i].File, files[i].FolderPath))
	}
	return out
}

type BulkDeleteRequest struct {
	FileIDs []uuid.UUID `json:"file_ids" binding:"required,min=1"`
}

type BulkDeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

type DeleteFileResponse struct {
	Message string `json:"message"`
}
