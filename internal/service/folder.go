package service

import (
	"context"
	"errors"

	"github.com/filerunner/backend/internal/dto"
	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/model"
	"github.com/filerunner/backend/internal/policy"
	"github.com/filerunner/backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FolderService handles folder management. Folders are logical path
// prefixes inside a project; creating one that already exists updates
// its visibility instead of failing.
type FolderService struct {
	folders  *repository.FolderRepository
	projects *repository.ProjectRepository
}

func NewFolderService(folders *repository.FolderRepository, projects *repository.ProjectRepository) *FolderService {
	return &FolderService{folders: folders, projects: projects}
}

func (s *FolderService) Create(ctx context.Context, user *policy.Identity, req *dto.CreateFolderRequest) (*dto.FolderResponse, error) {
	if !policy.ValidateFolderPath(req.Path) {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "invalid folder path")
	}

	project, err := s.ownedProject(ctx, user, req.ProjectID)
	if err != nil {
		return nil, err
	}

	// Visibility defaults from the project when the request leaves it out.
	isPublic := project.IsPublic
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	folder := &model.Folder{
		ID:        uuid.New(),
		ProjectID: req.ProjectID,
		Path:      req.Path,
		IsPublic:  isPublic,
	}
	if err := s.folders.Upsert(ctx, folder); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// Upsert may have hit an existing row with a different id; reload to
	// return the canonical record.
	stored, err := s.folders.GetByPath(ctx, req.ProjectID, req.Path)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	stats, err := s.folders.Stats(ctx, stored.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	resp := dto.NewFolderResponse(stored, stats.FileCount, stats.TotalSize)
	return &resp, nil
}

func (s *FolderService) List(ctx context.Context, user *policy.Identity, projectID uuid.UUID) ([]dto.FolderResponse, error) {
	if _, err := s.ownedProject(ctx, user, projectID); err != nil {
		return nil, err
	}

	folders, err := s.folders.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	out := make([]dto.FolderResponse, 0, len(folders))
	for i := range folders {
		stats, err := s.folders.Stats(ctx, folders[i].ID)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		out = append(out, dto.NewFolderResponse(&folders[i], stats.FileCount, stats.TotalSize))
	}
	return out, nil
}

func (s *FolderService) UpdateVisibility(ctx context.Context, user *policy.Identity, folderID uuid.UUID, isPublic bool) (*dto.FolderResponse, error) {
	folder, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if _, err := s.ownedProject(ctx, user, folder.ProjectID); err != nil {
		return nil, err
	}

	if err := s.folders.UpdateVisibility(ctx, folder.ID, isPublic); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	folder.IsPublic = isPublic

	stats, err := s.folders.Stats(ctx, folder.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	resp := dto.NewFolderResponse(folder, stats.FileCount, stats.TotalSize)
	return &resp, nil
}

// ownedProject resolves a project the user must own; others' projects
// read as not found.
func (s *FolderService) ownedProject(ctx context.Context, user *policy.Identity, projectID uuid.UUID) (*model.Project, error) {
	project, err := s.projects.GetOwned(ctx, projectID, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return project, nil
}
