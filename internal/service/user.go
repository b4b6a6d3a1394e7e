package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/filerunner/backend/internal/audit"
	"github.com/filerunner/backend/internal/dto"
	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/model"
	"github.com/filerunner/backend/internal/repository"
	"github.com/filerunner/backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles registration, login and password management.
type UserService struct {
	users       *repository.UserRepository
	sessions    *SessionService
	audit       *audit.Publisher
	allowSignup bool
}

func NewUserService(users *repository.UserRepository, sessions *SessionService, auditPub *audit.Publisher, allowSignup bool) *UserService {
	return &UserService{
		users:       users,
		sessions:    sessions,
		audit:       auditPub,
		allowSignup: allowSignup,
	}
}

// Register creates a user account and logs it straight in.
func (s *UserService) Register(ctx context.Context, req *dto.RegisterRequest, meta ClientMeta) (*dto.TokenResponse, error) {
	if !s.allowSignup {
		return nil, apperrors.ErrSignupDisabled
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailExists
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	pair, err := s.sessions.IssueSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	logger.GetLogger().Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return tokenResponse(pair, user), nil
}

// Login verifies credentials and issues a fresh session. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest, meta ClientMeta) (*dto.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.audit.Publish(ctx, audit.Event{Type: audit.EventLoginFailed, Email: req.Email})
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		logger.LogAuth(user.ID.String(), "login", false)
		s.audit.Publish(ctx, audit.Event{Type: audit.EventLoginFailed, UserID: user.ID.String()})
		return nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.sessions.IssueSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	logger.LogAuth(user.ID.String(), "login", true)
	s.audit.Publish(ctx, audit.Event{Type: audit.EventLogin, UserID: user.ID.String()})

	return tokenResponse(pair, user), nil
}

// GetUser returns the profile for an authenticated identity.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserInfo, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	info := dto.NewUserInfo(user)
	return &info, nil
}

// ChangePassword replaces the password hash, clears the forced-change
// flag and revokes every outstanding session. A compromised credential
// change must invalidate all refresh tokens, so the cascade is
// unconditional.
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return apperrors.ErrIncorrectPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	revoked, err := s.sessions.RevokeAllForUser(ctx, userID, model.RevokedReasonPasswordChange)
	if err != nil {
		return err
	}

	logger.GetLogger().Info("Password changed, all sessions revoked",
		zap.String("user_id", userID.String()),
		zap.Int64("revoked_count", revoked))
	s.audit.Publish(ctx, audit.Event{Type: audit.EventPasswordChange, UserID: userID.String()})

	return nil
}

// Logout revokes the single session behind the presented refresh token.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.sessions.RevokeByToken(ctx, refreshToken, model.RevokedReasonLogout); err != nil {
		return err
	}
	return nil
}

// LogoutAll revokes every live session of the user.
func (s *UserService) LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.sessions.RevokeAllForUser(ctx, userID, model.RevokedReasonLogoutAll)
	if err != nil {
		return 0, err
	}
	s.audit.Publish(ctx, audit.Event{Type: audit.EventLogoutAll, UserID: userID.String()})
	return count, nil
}

func tokenResponse(pair *SessionPair, user *model.User) *dto.TokenResponse {
	info := dto.NewUserInfo(user)
	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresIn,
		User:         &info,
	}
}
