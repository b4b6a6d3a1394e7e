// Package policy holds the pure authorization decision functions.
// Every function takes the resolved identity and resource records as
// explicit arguments and performs no I/O, so each decision is testable
// in isolation and the callers control exactly what state it sees.
package policy

import (
	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/model"
	"github.com/google/uuid"
)

// Identity is the authenticated user attached by the authentication
// gate and threaded explicitly into handlers and policy checks.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  model.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

// OwnsProject reports whether the identity owns the project. Project and
// folder mutations have no API-key path; this is their whole policy.
func OwnsProject(user *Identity, project *model.Project) bool {
	return user != nil && project.UserID == user.ID
}

// FileIsPublic resolves visibility for a file: the folder flag wins when
// the file sits in a folder, otherwise the project flag governs.
func FileIsPublic(project *model.Project, folder *model.Folder) bool {
	if folder != nil {
		return folder.IsPublic
	}
	return project.IsPublic
}

// CanDownloadFile decides the download path: public per the
// most-specific visibility flag, otherwise an exact API key match.
// Downloads have no user-session path so links stay shareable.
func CanDownloadFile(project *model.Project, folder *model.Folder, apiKey *uuid.UUID) bool {
	if FileIsPublic(project, folder) {
		return true
	}
	return apiKey != nil && *apiKey == project.APIKey
}

// CanDeleteFile decides single-file deletion. A resolved user identity
// takes precedence over any supplied API key; only without one does the
// key path apply.
func CanDeleteFile(user *Identity, project *model.Project, apiKey *uuid.UUID) bool {
	if user != nil {
		return project.UserID == user.ID
	}
	return apiKey != nil && *apiKey == project.APIKey
}

// AuthorizeBulkDelete computes the subset of requested files the caller
// may delete. owners maps project id to owning user id for every
// project referenced by files.
//
// User mode allows partial authorization: files in projects the user
// does not own are silently excluded and only the count reveals it.
// API-key mode grants no cross-project reach, so any file outside the
// key's project rejects the whole request instead of narrowing it.
func AuthorizeBulkDelete(user *Identity, keyProject *model.Project, files []model.File, owners map[uuid.UUID]uuid.UUID) ([]model.File, error) {
	if user != nil {
		authorized := make([]model.File, 0, len(files))
		for _, f := range files {
			if owners[f.ProjectID] == user.ID {
				authorized = append(authorized, f)
			}
		}
		return authorized, nil
	}

	if keyProject == nil {
		return nil, apperrors.ErrUnauthorized
	}

	for _, f := range files {
		if f.ProjectID != keyProject.ID {
			return nil, apperrors.WithMessage(apperrors.ErrBadRequest,
				"all files must belong to the project identified by the API key")
		}
	}
	return files, nil
}
