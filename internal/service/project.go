package service

import (
	"context"
	"errors"

	"github.com/filerunner/backend/internal/dto"
	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/model"
	"github.com/filerunner/backend/internal/policy"
	"github.com/filerunner/backend/internal/repository"
	"github.com/filerunner/backend/pkg/logger"
	"github.com/filerunner/backend/pkg/redis"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectService handles project CRUD and API key rotation. Every
// operation here is owner-only; API keys grant no project management
// rights.
type ProjectService struct {
	projects *repository.ProjectRepository
	cache    *redis.Client
}

func NewProjectService(projects *repository.ProjectRepository, cache *redis.Client) *ProjectService {
	return &ProjectService{projects: projects, cache: cache}
}

func (s *ProjectService) Create(ctx context.Context, user *policy.Identity, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	project := &model.Project{
		ID:       uuid.New(),
		UserID:   user.ID,
		Name:     req.Name,
		APIKey:   uuid.New(),
		IsPublic: req.IsPublic,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.GetLogger().Info("Project created",
		zap.String("project_id", project.ID.String()),
		zap.String("user_id", user.ID.String()))

	resp := dto.NewProjectResponse(project, 0, 0)
	return &resp, nil
}

func (s *ProjectService) List(ctx context.Context, user *policy.Identity) ([]dto.ProjectResponse, error) {
	projects, err := s.projects.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	out := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		stats, err := s.projects.Stats(ctx, projects[i].ID)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		out = append(out, dto.NewProjectResponse(&projects[i], stats.FileCount, stats.TotalSize))
	}
	return out, nil
}

func (s *ProjectService) Get(ctx context.Context, user *policy.Identity, id uuid.UUID) (*dto.ProjectResponse, error) {
	project, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.projects.Stats(ctx, project.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	resp := dto.NewProjectResponse(project, stats.FileCount, stats.TotalSize)
	return &resp, nil
}

func (s *ProjectService) Update(ctx context.Context, user *policy.Identity, id uuid.UUID, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	project, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if err := s.projects.Update(ctx, project.ID, req.Name, req.IsPublic); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// Visibility lives in the cached payload, so the stale entry has to go.
	s.cache.InvalidateProject(ctx, project.APIKey.String())

	project.Name = req.Name
	project.IsPublic = req.IsPublic

	stats, err := s.projects.Stats(ctx, project.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	resp := dto.NewProjectResponse(project, stats.FileCount, stats.TotalSize)
	return &resp, nil
}

// RotateAPIKey replaces the project's API key. The old key stops
// working immediately, including in the cache.
func (s *ProjectService) RotateAPIKey(ctx context.Context, user *policy.Identity, id uuid.UUID) (*dto.RotateAPIKeyResponse, error) {
	project, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	newKey, err := s.projects.RotateAPIKey(ctx, project.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.cache.InvalidateProject(ctx, project.APIKey.String())

	logger.GetLogger().Info("Project API key rotated",
		zap.String("project_id", project.ID.String()),
		zap.String("user_id", user.ID.String()))

	return &dto.RotateAPIKeyResponse{APIKey: newKey}, nil
}

func (s *ProjectService) Delete(ctx context.Context, user *policy.Identity, id uuid.UUID) error {
	project, err := s.getOwned(ctx, user, id)
	if err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, project.ID, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.cache.InvalidateProject(ctx, project.APIKey.String())
	return nil
}

// ResolveAPIKey looks a project up by API key, consulting the cache
// first. A key that matches no project is reported as unauthorized, not
// as missing, so callers cannot probe for key existence.
func (s *ProjectService) ResolveAPIKey(ctx context.Context, apiKey uuid.UUID) (*model.Project, error) {
	var cached model.Project
	if s.cache.GetProject(ctx, apiKey.String(), &cached) {
		return &cached, nil
	}

	project, err := s.projects.GetByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.cache.SetProject(ctx, apiKey.String(), project)
	return project, nil
}

// getOwned loads a project the user must own. Projects owned by someone
// else surface as not found rather than forbidden.
func (s *ProjectService) getOwned(ctx context.Context, user *policy.Identity, id uuid.UUID) (*model.Project, error) {
	project, err := s.projects.GetOwned(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return project, nil
}
