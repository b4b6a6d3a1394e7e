package service

import (
	"context"
	"testing"

	"github.com/filerunner/backend/internal/dto"
	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/model"
	"github.com/filerunner/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestUserService(t *testing.T, allowSignup bool) (*UserService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	sessions := NewSessionService(newTestTokenService(), repository.NewSessionRepository(db), users, nil)
	return NewUserService(users, sessions, nil, allowSignup), db
}

func TestRegisterIssuesSession(t *testing.T) {
	t.Parallel()
	svc, _ := newTestUserService(t, true)

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "New@Example.com",
		Password: "password123",
	}, ClientMeta{})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.Equal(t, model.RoleUser, resp.User.Role)
}

func TestRegisterDisabled(t *testing.T) {
	t.Parallel()
	svc, _ := newTestUserService(t, false)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "new@example.com",
		Password: "password123",
	}, ClientMeta{})
	assert.ErrorIs(t, err, apperrors.ErrSignupDisabled)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, db := newTestUserService(t, true)
	createTestUser(t, db, "taken@example.com", "password123")

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:    "taken@example.com",
		Password: "password123",
	}, ClientMeta{})
	assert.ErrorIs(t, err, apperrors.ErrEmailExists)
}

func TestLogin(t *testing.T) {
	t.Parallel()
	svc, db := newTestUserService(t, true)
	createTestUser(t, db, "alice@example.com", "password123")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}, ClientMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
}

func TestLoginBadCredentials(t *testing.T) {
	t.Parallel()
	svc, db := newTestUserService(t, true)
	createTestUser(t, db, "alice@example.com", "password123")

	// Wrong password and unknown email must be indistinguishable.
	_, wrongPass := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	}, ClientMeta{})
	_, unknown := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	}, ClientMeta{})

	assert.ErrorIs(t, wrongPass, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, apperrors.ErrInvalidCredentials)
	assert.Equal(t, apperrors.GetErrorMessage(wrongPass), apperrors.GetErrorMessage(unknown))
}

func TestChangePasswordRevokesAllSessions(t *testing.T) {
	t.Parallel()
	svc, db := newTestUserService(t, true)
	user := createTestUser(t, db, "bob@example.com", "password123")

	first, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "bob@example.com", Password: "password123",
	}, ClientMeta{})
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "bob@example.com", Password: "password123",
	}, ClientMeta{})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "password456",
	})
	require.NoError(t, err)

	var live int64
	require.NoError(t, db.Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", user.ID).
		Count(&live).Error)
	assert.Zero(t, live)

	// Pre-change refresh tokens are dead.
	sessions := NewSessionService(newTestTokenService(), repository.NewSessionRepository(db), repository.NewUserRepository(db), nil)
	_, err = sessions.Rotate(context.Background(), first.RefreshToken, ClientMeta{})
	assert.ErrorIs(t, err, apperrors.ErrTokenReuseDetected)

	// New password works, old one does not.
	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "bob@example.com", Password: "password456",
	}, ClientMeta{})
	assert.NoError(t, err)
	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email: "bob@example.com", Password: "password123",
	}, ClientMeta{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	t.Parallel()
	svc, db := newTestUserService(t, true)
	user := createTestUser(t, db, "carol@example.com", "password123")

	err := svc.ChangePassword(context.Background(), user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "wrong-password",
		NewPassword:     "password456",
	})
	assert.ErrorIs(t, err, apperrors.ErrIncorrectPassword)
}

func TestChangePasswordClearsForcedFlag(t *testing.T) {
	t.Parallel()
	svc, db := newTestUserService(t, true)
	user := createTestUser(t, db, "dave@example.com", "password123")
	require.NoError(t, db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("must_change_password", true).Error)

	err := svc.ChangePassword(context.Background(), user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "password456",
	})
	require.NoError(t, err)

	var stored model.User
	require.NoError(t, db.Where("id = ?", user.ID).First(&stored).Error)
	assert.False(t, stored.MustChangePassword)
}
