package service

import (
	"context"
	"errors"
	"time"

	"github.com/filerunner/backend/internal/audit"
	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/model"
	"github.com/filerunner/backend/internal/repository"
	"github.com/filerunner/backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClientMeta is the request metadata recorded on each session row.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

// SessionPair is one issued access/refresh pair.
type SessionPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// SessionService owns the refresh token lifecycle: issuing sessions,
// rotating them, and revoking them. Access tokens are never persisted;
// the refresh token hash row is the only durable side effect.
type SessionService struct {
	tokens   *TokenService
	sessions *repository.SessionRepository
	users    *repository.UserRepository
	audit    *audit.Publisher
}

func NewSessionService(tokens *TokenService, sessions *repository.SessionRepository, users *repository.UserRepository, auditPub *audit.Publisher) *SessionService {
	return &SessionService{
		tokens:   tokens,
		sessions: sessions,
		users:    users,
		audit:    auditPub,
	}
}

// IssueSession mints a fresh access/refresh pair for the user under a
// brand new token family and persists the refresh token's hash row.
func (s *SessionService) IssueSession(ctx context.Context, user *model.User, meta ClientMeta) (*SessionPair, error) {
	jti := uuid.New()
	familyID := uuid.New()

	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user.ID, jti, familyID)
	if err != nil {
		return nil, err
	}

	if err := s.persistRefreshToken(ctx, user.ID, jti, familyID, refreshToken, meta); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &SessionPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessExpiry().Seconds()),
	}, nil
}

// Rotate exchanges a refresh token for a new pair. The presented row is
// revoked (reason=rotation) and a new row is minted under the same
// family, so reuse of any rotated-away token remains detectable across
// the whole chain.
//
// Presenting an already-revoked token is treated as an active attack:
// every live token in the family is revoked before the error returns.
func (s *SessionService) Rotate(ctx context.Context, refreshToken string, meta ClientMeta) (*SessionPair, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	row, err := s.sessions.FindByHash(ctx, HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// The signed claims must agree with the stored row; a mismatch means
	// a forged or mixed-up token even though the hash matched.
	if claims.ID != row.ID.String() || claims.FamilyID != row.FamilyID.String() {
		return nil, apperrors.ErrTokenError
	}

	if row.Revoked() {
		return nil, s.handleReuse(ctx, row)
	}

	if time.Now().After(row.ExpiresAt) {
		return nil, apperrors.ErrRefreshExpired
	}

	// Conditional revoke: under concurrent rotation of the same token
	// exactly one caller wins; the loser observes the row as already
	// revoked, which is indistinguishable from replay and handled the
	// same way.
	if err := s.sessions.RevokeOne(ctx, row.ID, model.RevokedReasonRotation); err != nil {
		if errors.Is(err, repository.ErrAlreadyRevoked) {
			return nil, s.handleReuse(ctx, row)
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	newJti := uuid.New()
	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	newRefreshToken, err := s.tokens.IssueRefreshToken(user.ID, newJti, row.FamilyID)
	if err != nil {
		return nil, err
	}

	if err := s.persistRefreshToken(ctx, user.ID, newJti, row.FamilyID, newRefreshToken, meta); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.audit.Publish(ctx, audit.Event{
		Type:     audit.EventTokenRotated,
		UserID:   user.ID.String(),
		FamilyID: row.FamilyID.String(),
	})

	return &SessionPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int64(s.tokens.AccessExpiry().Seconds()),
	}, nil
}

// handleReuse contains a detected replay: the whole family is revoked
// before the distinct error is returned, so the mitigation happens even
// though the operation fails.
func (s *SessionService) handleReuse(ctx context.Context, row *model.RefreshToken) error {
	revoked, err := s.sessions.RevokeFamily(ctx, row.FamilyID, model.RevokedReasonReuseDetected)
	if err != nil {
		logger.GetLogger().Error("Failed to revoke token family after reuse detection",
			zap.String("family_id", row.FamilyID.String()),
			zap.Error(err))
	}

	logger.GetLogger().Warn("Refresh token reuse detected, family revoked",
		zap.String("user_id", row.UserID.String()),
		zap.String("family_id", row.FamilyID.String()),
		zap.Int64("revoked_count", revoked))

	s.audit.Publish(ctx, audit.Event{
		Type:     audit.EventReuseDetected,
		UserID:   row.UserID.String(),
		FamilyID: row.FamilyID.String(),
	})

	return apperrors.ErrTokenReuseDetected
}

// RevokeByToken revokes the single session behind a presented refresh
// token (logout). Revoking an already-revoked row is a no-op.
func (s *SessionService) RevokeByToken(ctx context.Context, refreshToken, reason string) error {
	if _, err := s.tokens.VerifyRefreshToken(refreshToken); err != nil {
		return err
	}

	row, err := s.sessions.FindByHash(ctx, HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTokenNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.sessions.RevokeOne(ctx, row.ID, reason); err != nil && !errors.Is(err, repository.ErrAlreadyRevoked) {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return nil
}

// RevokeAllForUser revokes every live session of a user and returns the
// count. Password changes always go through here.
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	count, err := s.sessions.RevokeAllForUser(ctx, userID, reason)
	if err != nil {
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return count, nil
}

func (s *SessionService) persistRefreshToken(ctx context.Context, userID, jti, familyID uuid.UUID, refreshToken string, meta ClientMeta) error {
	row := &model.RefreshToken{
		ID:        jti,
		UserID:    userID,
		TokenHash: HashToken(refreshToken),
		FamilyID:  familyID,
		ExpiresAt: time.Now().Add(s.tokens.RefreshExpiry()),
		CreatedAt: time.Now(),
	}
	if meta.UserAgent != "" {
		row.UserAgent = &meta.UserAgent
	}
	if meta.IPAddress != "" {
		row.IPAddress = &meta.IPAddress
	}
	return s.sessions.Insert(ctx, row)
}
