package service

import (
	"context"
	"testing"

	"github.com/filerunner/backend/internal/dto"
	"github.com/filerunner/backend/internal/policy"
	"github.com/filerunner/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestFolderService(t *testing.T) (*FolderService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewFolderService(repository.NewFolderRepository(db), repository.NewProjectRepository(db)), db
}

func boolPtr(b bool) *bool { return &b }

func TestCreateFolderVisibilityDefaultsFromProject(t *testing.T) {
	t.Parallel()
	svc, db := newTestFolderService(t)
	owner := createTestUser(t, db, "owner@example.com", "password123")
	ident := &policy.Identity{ID: owner.ID}

	publicProject := createTestProject(t, db, owner.ID, true)
	privateProject := createTestProject(t, db, owner.ID, false)

	// No is_public in the request: the project flag carries over.
	resp, err := svc.Create(context.Background(), ident, &dto.CreateFolderRequest{
		ProjectID: publicProject.ID,
		Path:      "inherited",
	})
	require.NoError(t, err)
	assert.True(t, resp.IsPublic)

	resp, err = svc.Create(context.Background(), ident, &dto.CreateFolderRequest{
		ProjectID: privateProject.ID,
		Path:      "inherited",
	})
	require.NoError(t, err)
	assert.False(t, resp.IsPublic)

	// An explicit flag overrides the default either way.
	resp, err = svc.Create(context.Background(), ident, &dto.CreateFolderRequest{
		ProjectID: publicProject.ID,
		Path:      "locked",
		IsPublic:  boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, resp.IsPublic)
}

func TestCreateFolderUpsertUpdatesVisibility(t *testing.T) {
	t.Parallel()
	svc, db := newTestFolderService(t)
	owner := createTestUser(t, db, "owner@example.com", "password123")
	ident := &policy.Identity{ID: owner.ID}
	project := createTestProject(t, db, owner.ID, false)

	first, err := svc.Create(context.Background(), ident, &dto.CreateFolderRequest{
		ProjectID: project.ID,
		Path:      "docs",
	})
	require.NoError(t, err)
	assert.False(t, first.IsPublic)

	// Re-creating the same path flips the flag instead of failing.
	second, err := svc.Create(context.Background(), ident, &dto.CreateFolderRequest{
		ProjectID: project.ID,
		Path:      "docs",
		IsPublic:  boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.IsPublic)
}
