package repository

import (
	"context"
	"errors"
	"time"

	"github.com/filerunner/backend/internal/model"
	"github.com/filerunner/backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionRepository is the durable store of issued refresh tokens.
// Rows are append-only: mutation only ever sets the revocation fields,
// and revocation is monotonic (a revoked row stays revoked).
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Insert(ctx context.Context, token *model.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		logger.GetLogger().Error("Failed to insert refresh token row",
			zap.String("user_id", token.UserID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

// FindByHash looks up a session row by the SHA-256 of the raw token.
// Returns gorm.ErrRecordNotFound when no row matches.
func (r *SessionRepository) FindByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	var token model.RefreshToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// RevokeOne marks a single row revoked. The revoked_at IS NULL guard
// makes the call idempotent and doubles as the conditional update that
// resolves concurrent rotations: exactly one caller sees RowsAffected=1,
// every other one gets ErrAlreadyRevoked and must treat it as reuse.
func (r *SessionRepository) RevokeOne(ctx context.Context, id uuid.UUID, reason string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Updates(map[string]interface{}{
			"revoked_at":     now,
			"revoked_reason": reason,
		})
	if result.Error != nil {
		logger.GetLogger().Error("Failed to revoke refresh token",
			zap.String("token_id", id.String()),
			zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyRevoked
	}
	return nil
}

// RevokeFamily revokes every live row descended from one login.
// Returns the number of rows revoked; already-revoked rows are skipped.
func (r *SessionRepository) RevokeFamily(ctx context.Context, familyID uuid.UUID, reason string) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("family_id = ? AND revoked_at IS NULL", familyID).
		Updates(map[string]interface{}{
			"revoked_at":     now,
			"revoked_reason": reason,
		})
	if result.Error != nil {
		logger.GetLogger().Error("Failed to revoke token family",
			zap.String("family_id", familyID.String()),
			zap.Error(result.Error))
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RevokeAllForUser revokes every live session of a user.
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Updates(map[string]interface{}{
			"revoked_at":     now,
			"revoked_reason": reason,
		})
	if result.Error != nil {
		logger.GetLogger().Error("Failed to revoke user sessions",
			zap.String("user_id", userID.String()),
			zap.Error(result.Error))
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountLiveForFamily reports non-revoked rows in a family.
func (r *SessionRepository) CountLiveForFamily(ctx context.Context, familyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("family_id = ? AND revoked_at IS NULL", familyID).
		Count(&count).Error
	return count, err
}

// ErrAlreadyRevoked signals that a conditional revoke found the row
// already revoked. Callers on the rotation path treat it as reuse.
var ErrAlreadyRevoked = errors.New("refresh token already revoked")
