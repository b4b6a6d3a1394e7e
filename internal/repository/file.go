package repository

import (
	"context"

	"github.com/filerunner/backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *model.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.File, error) {
	var file model.File
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// GetByIDs fetches every requested file that exists; missing ids are
// silently absent from the result.
func (r *FileRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&files).Error
	return files, err
}

// FileWithFolder joins the owning folder path for listings.
type FileWithFolder struct {
	model.File
	FolderPath *string
}

func (r *FileRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]FileWithFolder, error) {
	var files []FileWithFolder
	err := r.db.WithContext(ctx).
		Model(&model.File{}).
		Select("files.*, folders.path AS folder_path").
		Joins("LEFT JOIN folders ON folders.id = files.folder_id").
		Where("files.project_id = ?", projectID).
		Order("files.upload_date DESC").
		Scan(&files).Error
	return files, err
}

func (r *FileRepository) ListByFolder(ctx context.Context, folderID uuid.UUID) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).Where("folder_id = ?", folderID).Find(&files).Error
	return files, err
}

func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.File{}).Error
}

func (r *FileRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.File{})
	return result.RowsAffected, result.Error
}

func (r *FileRepository) DeleteByFolder(ctx context.Context, folderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("folder_id = ?", folderID).Delete(&model.File{})
	return result.RowsAffected, result.Error
}
