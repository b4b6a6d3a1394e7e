package service

import (
	"context"
	"errors"
	"mime"
	"path/filepath"
	"strings"

	"github.com/filerunner/backend/internal/dto"
	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/model"
	"github.com/filerunner/backend/internal/policy"
	"github.com/filerunner/backend/internal/repository"
	"github.com/filerunner/backend/pkg/logger"
	"github.com/filerunner/backend/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileService handles the upload, download and deletion paths. Blob
// writes always land on disk before the metadata row is committed.
type FileService struct {
	files       *repository.FileRepository
	folders     *repository.FolderRepository
	projects    *repository.ProjectRepository
	resolver    *ProjectService
	store       *storage.LocalStorage
	maxFileSize int64
}

func NewFileService(
	files *repository.FileRepository,
	folders *repository.FolderRepository,
	projects *repository.ProjectRepository,
	resolver *ProjectService,
	store *storage.LocalStorage,
	maxFileSize int64,
) *FileService {
	return &FileService{
		files:       files,
		folders:     folders,
		projects:    projects,
		resolver:    resolver,
		store:       store,
		maxFileSize: maxFileSize,
	}
}

// UploadInput carries one multipart upload. FolderPath is optional;
// DeclaredMime is the client's Content-Type and only a fallback.
type UploadInput struct {
	OriginalName string
	FolderPath   string
	DeclaredMime string
	Data         []byte
}

// Upload ingests a file under the project identified by the API key.
// Uploads are key-only; a user session grants no upload rights.
func (s *FileService) Upload(ctx context.Context, apiKey uuid.UUID, in UploadInput) (*dto.UploadResponse, error) {
	project, err := s.resolver.ResolveAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	if int64(len(in.Data)) > s.maxFileSize {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "file exceeds the maximum allowed size")
	}
	if in.OriginalName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "file name is required")
	}

	var folder *model.Folder
	if in.FolderPath != "" {
		if !policy.ValidateFolderPath(in.FolderPath) {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "invalid folder path")
		}
		// Folders minted by an upload inherit the project's flag.
		folder, err = s.folders.GetOrCreate(ctx, project.ID, in.FolderPath, project.IsPublic)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}

	ext := filepath.Ext(in.OriginalName)
	storedName := uuid.New().String() + ext

	physicalPath, err := s.store.Write(project.ID.String(), in.FolderPath, storedName, in.Data)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrStorage, err)
	}

	file := &model.File{
		ID:           uuid.New(),
		ProjectID:    project.ID,
		OriginalName: in.OriginalName,
		StoredName:   storedName,
		FilePath:     physicalPath,
		Size:         int64(len(in.Data)),
		MimeType:     detectMimeType(in.OriginalName, in.DeclaredMime),
	}
	if folder != nil {
		file.FolderID = &folder.ID
	}

	if err := s.files.Create(ctx, file); err != nil {
		// Roll the blob back so no orphan survives a metadata failure.
		if rmErr := s.store.Delete(physicalPath); rmErr != nil {
			logger.GetLogger().Error("Failed to remove blob after metadata failure",
				zap.String("path", physicalPath),
				zap.Error(rmErr))
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.GetLogger().Info("File uploaded",
		zap.String("file_id", file.ID.String()),
		zap.String("project_id", project.ID.String()),
		zap.Int64("size", file.Size))

	resp := &dto.UploadResponse{
		ID:           file.ID,
		OriginalName: file.OriginalName,
		StoredName:   file.StoredName,
		Size:         file.Size,
		MimeType:     file.MimeType,
		FolderID:     file.FolderID,
		UploadDate:   file.UploadDate,
	}
	if folder != nil {
		resp.FolderPath = &folder.Path
	}
	return resp, nil
}

// DownloadResult is a streamed file plus the headers it needs.
type DownloadResult struct {
	OriginalName string
	MimeType     string
	Data         []byte
}

// Download fetches a file's bytes if the caller may see them: public by
// the most-specific visibility flag, or an API key matching the owning
// project. There is no user-session path here.
func (s *FileService) Download(ctx context.Context, fileID uuid.UUID, apiKey *uuid.UUID) (*DownloadResult, error) {
	file, project, folder, err := s.loadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if !policy.CanDownloadFile(project, folder, apiKey) {
		return nil, apperrors.ErrUnauthorized
	}

	data, err := s.store.Read(file.FilePath)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrStorage, err)
	}

	return &DownloadResult{
		OriginalName: file.OriginalName,
		MimeType:     file.MimeType,
		Data:         data,
	}, nil
}

// Delete removes a single file. A resolved user identity must own the
// project; without one, the API key must match it.
func (s *FileService) Delete(ctx context.Context, user *policy.Identity, apiKey *uuid.UUID, fileID uuid.UUID) error {
	file, project, _, err := s.loadFile(ctx, fileID)
	if err != nil {
		return err
	}

	if !policy.CanDeleteFile(user, project, apiKey) {
		return apperrors.ErrUnauthorized
	}

	if err := s.files.Delete(ctx, file.ID); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// Blob removal after the row is gone; a leftover blob is harmless.
	if err := s.store.Delete(file.FilePath); err != nil {
		logger.GetLogger().Warn("Failed to remove blob for deleted file",
			zap.String("file_id", file.ID.String()),
			zap.Error(err))
	}
	return nil
}

// BulkDelete removes a batch of files. With a user identity the batch
// narrows to files the user owns; with only an API key every file must
// belong to the key's project or the whole request is rejected.
func (s *FileService) BulkDelete(ctx context.Context, user *policy.Identity, apiKey *uuid.UUID, ids []uuid.UUID) (int64, error) {
	files, err := s.files.GetByIDs(ctx, ids)
	if err != nil {
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if len(files) == 0 {
		return 0, nil
	}

	var keyProject *model.Project
	if user == nil && apiKey != nil {
		keyProject, err = s.resolver.ResolveAPIKey(ctx, *apiKey)
		if err != nil {
			return 0, err
		}
	}

	owners := make(map[uuid.UUID]uuid.UUID)
	if user != nil {
		for _, f := range files {
			if _, seen := owners[f.ProjectID]; seen {
				continue
			}
			project, err := s.projects.GetByID(ctx, f.ProjectID)
			if err != nil {
				return 0, apperrors.WrapError(apperrors.ErrInternal, err)
			}
			owners[f.ProjectID] = project.UserID
		}
	}

	authorized, err := policy.AuthorizeBulkDelete(user, keyProject, files, owners)
	if err != nil {
		return 0, err
	}
	if len(authorized) == 0 {
		return 0, nil
	}

	deleteIDs := make([]uuid.UUID, 0, len(authorized))
	for _, f := range authorized {
		deleteIDs = append(deleteIDs, f.ID)
	}

	deleted, err := s.files.DeleteByIDs(ctx, deleteIDs)
	if err != nil {
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	for _, f := range authorized {
		if err := s.store.Delete(f.FilePath); err != nil {
			logger.GetLogger().Warn("Failed to remove blob for deleted file",
				zap.String("file_id", f.ID.String()),
				zap.Error(err))
		}
	}
	return deleted, nil
}

// DeleteFolderFiles purges every file in a folder along with the folder
// record and its directory on disk.
func (s *FileService) DeleteFolderFiles(ctx context.Context, user *policy.Identity, apiKey *uuid.UUID, projectID uuid.UUID, path string) (int64, error) {
	if !policy.ValidateFolderPath(path) {
		return 0, apperrors.WithMessage(apperrors.ErrValidation, "invalid folder path")
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrNotFound
		}
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if !policy.CanDeleteFile(user, project, apiKey) {
		return 0, apperrors.ErrUnauthorized
	}

	folder, err := s.folders.GetByPath(ctx, projectID, path)
	if err != nil {
		// Purging an absent folder is a successful no-op.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	deleted, err := s.files.DeleteByFolder(ctx, folder.ID)
	if err != nil {
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.folders.Delete(ctx, folder.ID); err != nil {
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.store.DeleteTree(projectID.String(), path); err != nil {
		logger.GetLogger().Warn("Failed to remove folder directory",
			zap.String("project_id", projectID.String()),
			zap.String("path", path),
			zap.Error(err))
	}

	logger.GetLogger().Info("Folder purged",
		zap.String("project_id", projectID.String()),
		zap.String("path", path),
		zap.Int64("deleted_count", deleted))
	return deleted, nil
}

// ListByProject returns metadata for every file in a project the user
// owns.
func (s *FileService) ListByProject(ctx context.Context, user *policy.Identity, projectID uuid.UUID) ([]dto.FileMetadata, error) {
	project, err := s.projects.GetOwned(ctx, projectID, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	files, err := s.files.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return dto.NewFileMetadataList(files), nil
}

// loadFile resolves a file together with its project and folder.
func (s *FileService) loadFile(ctx context.Context, fileID uuid.UUID) (*model.File, *model.Project, *model.Folder, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	project, err := s.projects.GetByID(ctx, file.ProjectID)
	if err != nil {
		return nil, nil, nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	var folder *model.Folder
	if file.FolderID != nil {
		folder, err = s.folders.GetByID(ctx, *file.FolderID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
	}
	return file, project, folder, nil
}

// detectMimeType prefers the extension mapping over the client-declared
// type; the declared type is a hint, never trusted blindly.
func detectMimeType(name, declared string) string {
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		// Strip charset parameters, the stored type is the bare media type.
		if i := strings.IndexByte(byExt, ';'); i >= 0 {
			byExt = strings.TrimSpace(byExt[:i])
		}
		return byExt
	}
	if declared != "" {
		return declared
	}
	return "application/octet-stream"
}
