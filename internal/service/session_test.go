package service

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/model"
	"github.com/filerunner/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestSessionService(t *testing.T) (*SessionService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	tokens := newTestTokenService()
	svc := NewSessionService(tokens, repository.NewSessionRepository(db), repository.NewUserRepository(db), nil)
	return svc, db
}

func liveTokenCount(t *testing.T, db *gorm.DB, familyID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.RefreshToken{}).
		Where("family_id = ? AND revoked_at IS NULL", familyID).
		Count(&count).Error)
	return count
}

func TestIssueSessionPersistsHashedRow(t *testing.T) {
	t.Parallel()
	svc, db := newTestSessionService(t)
	user := createTestUser(t, db, "alice@example.com", "password123")

	pair, err := svc.IssueSession(context.Background(), user, ClientMeta{UserAgent: "test", IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	var row model.RefreshToken
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&row).Error)
	assert.Equal(t, HashToken(pair.RefreshToken), row.TokenHash)
	assert.NotContains(t, row.TokenHash, pair.RefreshToken)
	assert.Nil(t, row.RevokedAt)
}

func TestRotateRevokesOldAndKeepsFamily(t *testing.T) {
	t.Parallel()
	svc, db := newTestSessionService(t)
	user := createTestUser(t, db, "bob@example.com", "password123")

	pair, err := svc.IssueSession(context.Background(), user, ClientMeta{})
	require.NoError(t, err)

	rotated, err := svc.Rotate(context.Background(), pair.RefreshToken, ClientMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	var oldRow, newRow model.RefreshToken
	require.NoError(t, db.Where("token_hash = ?", HashToken(pair.RefreshToken)).First(&oldRow).Error)
	require.NoError(t, db.Where("token_hash = ?", HashToken(rotated.RefreshToken)).First(&newRow).Error)

	// Same family across the chain, old row revoked with the rotation
	// reason, new row live.
	assert.Equal(t, oldRow.FamilyID, newRow.FamilyID)
	require.NotNil(t, oldRow.RevokedAt)
	require.NotNil(t, oldRow.RevokedReason)
	assert.Equal(t, model.RevokedReasonRotation, *oldRow.RevokedReason)
	assert.Nil(t, newRow.RevokedAt)

	var total int64
	require.NoError(t, db.Model(&model.RefreshToken{}).Where("user_id = ?", user.ID).Count(&total).Error)
	assert.EqualValues(t, 2, total)
}

func TestRotateReuseRevokesWholeFamily(t *testing.T) {
	t.Parallel()
	svc, db := newTestSessionService(t)
	user := createTestUser(t, db, "carol@example.com", "password123")

	pair, err := svc.IssueSession(context.Background(), user, ClientMeta{})
	require.NoError(t, err)

	rotated, err := svc.Rotate(context.Background(), pair.RefreshToken, ClientMeta{})
	require.NoError(t, err)

	// Replaying the rotated-away token is theft: the distinct error
	// comes back and the whole family dies, including the fresh token.
	_, err = svc.Rotate(context.Background(), pair.RefreshToken, ClientMeta{})
	assert.ErrorIs(t, err, apperrors.ErrTokenReuseDetected)

	var row model.RefreshToken
	require.NoError(t, db.Where("token_hash = ?", HashToken(rotated.RefreshToken)).First(&row).Error)
	require.NotNil(t, row.RevokedAt)
	require.NotNil(t, row.RevokedReason)
	assert.Equal(t, model.RevokedReasonReuseDetected, *row.RevokedReason)
	assert.Zero(t, liveTokenCount(t, db, row.FamilyID.String()))

	// The sibling issued by the successful rotation is now dead too.
	_, err = svc.Rotate(context.Background(), rotated.RefreshToken, ClientMeta{})
	assert.ErrorIs(t, err, apperrors.ErrTokenReuseDetected)
}

func TestRotateUnknownTokenNotFound(t *testing.T) {
	t.Parallel()
	svc, db := newTestSessionService(t)
	user := createTestUser(t, db, "dave@example.com", "password123")

	// Signed fine but no row behind it.
	token, err := newTestTokenService().IssueRefreshToken(user.ID, uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = svc.Rotate(context.Background(), token, ClientMeta{})
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}

func TestRotateRejectsAccessToken(t *testing.T) {
	t.Parallel()
	svc, db := newTestSessionService(t)
	user := createTestUser(t, db, "erin@example.com", "password123")

	access, err := newTestTokenService().IssueAccessToken(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	_, err = svc.Rotate(context.Background(), access, ClientMeta{})
	assert.ErrorIs(t, err, apperrors.ErrTokenError)
}

func TestRotateExpiredRow(t *testing.T) {
	t.Parallel()
	svc, db := newTestSessionService(t)
	user := createTestUser(t, db, "frank@example.com", "password123")

	pair, err := svc.IssueSession(context.Background(), user, ClientMeta{})
	require.NoError(t, err)

	// Backdate the stored expiry past the cutoff; the JWT itself is
	// still within its signed lifetime.
	require.NoError(t, db.Model(&model.RefreshToken{}).
		Where("token_hash = ?", HashToken(pair.RefreshToken)).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	_, err = svc.Rotate(context.Background(), pair.RefreshToken, ClientMeta{})
	assert.ErrorIs(t, err, apperrors.ErrRefreshExpired)
}

func TestRevokeByTokenIsIdempotent(t *testing.T) {
	t.Parallel()
	svc, db := newTestSessionService(t)
	user := createTestUser(t, db, "grace@example.com", "password123")

	pair, err := svc.IssueSession(context.Background(), user, ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeByToken(context.Background(), pair.RefreshToken, model.RevokedReasonLogout))
	require.NoError(t, svc.RevokeByToken(context.Background(), pair.RefreshToken, model.RevokedReasonLogout))

	var row model.RefreshToken
	require.NoError(t, db.Where("token_hash = ?", HashToken(pair.RefreshToken)).First(&row).Error)
	require.NotNil(t, row.RevokedReason)
	assert.Equal(t, model.RevokedReasonLogout, *row.RevokedReason)
}

func TestRevokeAllForUserCountsLiveSessions(t *testing.T) {
	t.Parallel()
	svc, db := newTestSessionService(t)
	user := createTestUser(t, db, "heidi@example.com", "password123")

	for i := 0; i < 3; i++ {
		_, err := svc.IssueSession(context.Background(), user, ClientMeta{})
		require.NoError(t, err)
	}

	count, err := svc.RevokeAllForUser(context.Background(), user.ID, model.RevokedReasonLogoutAll)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	count, err = svc.RevokeAllForUser(context.Background(), user.ID, model.RevokedReasonLogoutAll)
	require.NoError(t, err)
	assert.Zero(t, count)
}
