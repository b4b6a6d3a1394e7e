package policy

import (
	"testing"

	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProject(ownerID uuid.UUID, isPublic bool) *model.Project {
	return &model.Project{
		ID:       uuid.New(),
		UserID:   ownerID,
		Name:     "test",
		APIKey:   uuid.New(),
		IsPublic: isPublic,
	}
}

func TestFileIsPublicMostSpecificWins(t *testing.T) {
	t.Parallel()
	owner := uuid.New()

	publicProject := testProject(owner, true)
	privateProject := testProject(owner, false)
	publicFolder := &model.Folder{IsPublic: true}
	privateFolder := &model.Folder{IsPublic: false}

	// No folder: the project flag governs.
	assert.True(t, FileIsPublic(publicProject, nil))
	assert.False(t, FileIsPublic(privateProject, nil))

	// Folder present: its flag overrides the project either way.
	assert.False(t, FileIsPublic(publicProject, privateFolder))
	assert.True(t, FileIsPublic(privateProject, publicFolder))
}

func TestCanDownloadFile(t *testing.T) {
	t.Parallel()
	project := testProject(uuid.New(), false)
	wrongKey := uuid.New()

	assert.False(t, CanDownloadFile(project, nil, nil))
	assert.False(t, CanDownloadFile(project, nil, &wrongKey))
	assert.True(t, CanDownloadFile(project, nil, &project.APIKey))

	// Public files need no key at all.
	assert.True(t, CanDownloadFile(testProject(uuid.New(), true), nil, nil))
}

func TestCanDeleteFile(t *testing.T) {
	t.Parallel()
	ownerID := uuid.New()
	project := testProject(ownerID, false)
	owner := &Identity{ID: ownerID, Role: model.RoleUser}
	stranger := &Identity{ID: uuid.New(), Role: model.RoleUser}

	assert.True(t, CanDeleteFile(owner, project, nil))
	assert.False(t, CanDeleteFile(stranger, project, nil))
	assert.True(t, CanDeleteFile(nil, project, &project.APIKey))

	wrongKey := uuid.New()
	assert.False(t, CanDeleteFile(nil, project, &wrongKey))

	// A resolved user identity takes precedence: a stranger does not get
	// through by also supplying the right key.
	assert.False(t, CanDeleteFile(stranger, project, &project.APIKey))

	assert.False(t, CanDeleteFile(nil, project, nil))
}

func TestAuthorizeBulkDeleteUserModePartial(t *testing.T) {
	t.Parallel()
	ownerID := uuid.New()
	mine := testProject(ownerID, false)
	theirs := testProject(uuid.New(), false)

	files := []model.File{
		{ID: uuid.New(), ProjectID: mine.ID},
		{ID: uuid.New(), ProjectID: theirs.ID},
		{ID: uuid.New(), ProjectID: mine.ID},
	}
	owners := map[uuid.UUID]uuid.UUID{
		mine.ID:   mine.UserID,
		theirs.ID: theirs.UserID,
	}

	authorized, err := AuthorizeBulkDelete(&Identity{ID: ownerID, Role: model.RoleUser}, nil, files, owners)
	require.NoError(t, err)
	require.Len(t, authorized, 2)
	for _, f := range authorized {
		assert.Equal(t, mine.ID, f.ProjectID)
	}
}

func TestAuthorizeBulkDeleteKeyModeAllOrNothing(t *testing.T) {
	t.Parallel()
	keyProject := testProject(uuid.New(), false)
	other := testProject(uuid.New(), false)

	sameProject := []model.File{
		{ID: uuid.New(), ProjectID: keyProject.ID},
		{ID: uuid.New(), ProjectID: keyProject.ID},
	}
	authorized, err := AuthorizeBulkDelete(nil, keyProject, sameProject, nil)
	require.NoError(t, err)
	assert.Len(t, authorized, 2)

	// One foreign file poisons the whole batch.
	mixed := append(sameProject, model.File{ID: uuid.New(), ProjectID: other.ID})
	_, err = AuthorizeBulkDelete(nil, keyProject, mixed, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestAuthorizeBulkDeleteNoCredentials(t *testing.T) {
	t.Parallel()
	_, err := AuthorizeBulkDelete(nil, nil, []model.File{{ID: uuid.New()}}, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
