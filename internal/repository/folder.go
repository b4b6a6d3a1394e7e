package repository

import (
	"context"
	"errors"

	"github.com/filerunner/backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FolderRepository struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

// Upsert creates the folder or, when (project_id, path) already exists,
// updates its visibility flag.
func (r *FolderRepository) Upsert(ctx context.Context, folder *model.Folder) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_public"}),
		}).
		Create(folder).Error
}

// GetOrCreate returns the folder at path, creating it with the given
// visibility default when absent.
func (r *FolderRepository) GetOrCreate(ctx context.Context, projectID uuid.UUID, path string, isPublic bool) (*model.Folder, error) {
	var folder model.Folder
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND path = ?", projectID, path).
		First(&folder).Error
	if err == nil {
		return &folder, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	folder = model.Folder{
		ID:        uuid.New(),
		ProjectID: projectID,
		Path:      path,
		IsPublic:  isPublic,
	}
	if err := r.db.WithContext(ctx).Create(&folder).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Folder, error) {
	var folder model.Folder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&folder).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *FolderRepository) GetByPath(ctx context.Context, projectID uuid.UUID, path string) (*model.Folder, error) {
	var folder model.Folder
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND path = ?", projectID, path).
		First(&folder).Error
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *FolderRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]model.Folder, error) {
	var folders []model.Folder
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("path").
		Find(&folders).Error
	return folders, err
}

func (r *FolderRepository) Stats(ctx context.Context, folderID uuid.UUID) (*ProjectStats, error) {
	var stats ProjectStats
	err := r.db.WithContext(ctx).
		Model(&model.File{}).
		Select("COUNT(*) AS file_count, COALESCE(SUM(size), 0) AS total_size").
		Where("folder_id = ?", folderID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *FolderRepository) UpdateVisibility(ctx context.Context, id uuid.UUID, isPublic bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.Folder{}).
		Where("id = ?", id).
		Update("is_public", isPublic)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *FolderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Folder{}).Error
}
