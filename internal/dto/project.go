package dto

import (
	"time"

	"github.com/filerunner/backend/internal/model"
	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	IsPublic bool   `json:"is_public"`
}

type UpdateProjectRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	IsPublic bool   `json:"is_public"`
}

type ProjectResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	APIKey    uuid.UUID `json:"api_key"`
	IsPublic  bool      `json:"is_public"`
	FileCount int64     `json:"file_count"`
	TotalSize int64     `json:"total_size"`
	CreatedAt time.Time `json:"created_at"`
}

func NewProjectResponse(project *model.Project, fileCount, totalSize int64) ProjectResponse {
	return ProjectResponse{
		ID:        project.ID,
		Name:      project.Name,
		APIKey:    project.APIKey,
		IsPublic:  project.IsPublic,
		FileCount: fileCount,
		TotalSize: totalSize,
		CreatedAt: project.CreatedAt,
	}
}

type RotateAPIKeyResponse struct {
	APIKey uuid.UUID `json:"api_key"`
}

type DeleteProjectResponse struct {
	Message string `json:"message"`
}
