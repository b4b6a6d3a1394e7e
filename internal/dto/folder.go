package dto

import (
	"time"

	"github.com/filerunner/backend/internal/model"
	"github.com/google/uuid"
)

type CreateFolderRequest struct {
	ProjectID uuid.UUID `json:"project_id" binding:"required"`
	Path      string    `json:"path" binding:"required,folderpath"`
	// Omitted means inherit the project's visibility flag.
	IsPublic *bool `json:"is_public"`
}

type UpdateFolderVisibilityRequest struct {
	IsPublic bool `json:"is_public"`
}

type FolderResponse struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Path      string    `json:"path"`
	IsPublic  bool      `json:"is_public"`
	FileCount int64     `json:"file_count"`
	TotalSize int64     `json:"total_size"`
	CreatedAt time.Time `json:"created_at"`
}

func NewFolderResponse(folder *model.Folder, fileCount, totalSize int64) FolderResponse {
	return FolderResponse{
		ID:        folder.ID,
		ProjectID: folder.ProjectID,
		Path:      folder.Path,
		IsPublic:  folder.IsPublic,
		FileCount: fileCount,
		TotalSize: totalSize,
		CreatedAt: folder.CreatedAt,
	}
}

type DeleteFolderFilesRequest struct {
	ProjectID uuid.UUID `json:"project_id" binding:"required"`
	Path      string    `json:"path" binding:"required,folderpath"`
}

type DeleteFolderFilesResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}
