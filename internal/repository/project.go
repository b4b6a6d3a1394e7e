package repository

import (
	"context"

	"github.com/filerunner/backend/internal/model"
	"github.com/filerunner/backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// ProjectStats carries the file aggregates shown in project listings.
type ProjectStats struct {
	FileCount int64
	TotalSize int64
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		logger.GetLogger().Error("Failed to create project",
			zap.String("user_id", project.UserID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// GetOwned fetches a project only if it belongs to the given user.
func (r *ProjectRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) GetByAPIKey(ctx context.Context, apiKey uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Stats(ctx context.Context, projectID uuid.UUID) (*ProjectStats, error) {
	var stats ProjectStats
	err := r.db.WithContext(ctx).
		Model(&model.File{}).
		Select("COUNT(*) AS file_count, COALESCE(SUM(size), 0) AS total_size").
		Where("project_id = ?", projectID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id uuid.UUID, name string, isPublic bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":      name,
			"is_public": isPublic,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RotateAPIKey replaces the project's API key, returning the new one.
func (r *ProjectRepository) RotateAPIKey(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	newKey := uuid.New()
	result := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ?", id).
		Update("api_key", newKey)
	if result.Error != nil {
		return uuid.Nil, result.Error
	}
	if result.RowsAffected == 0 {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return newKey, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Project{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
