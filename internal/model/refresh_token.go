package model

import (
	"time"

	"github.com/google/uuid"
)

// Revocation reasons recorded on refresh token rows. Rows are never
// deleted by normal flows, only marked revoked, so the table doubles
// as an audit trail.
const (
	RevokedReasonRotation       = "rotation"
	RevokedReasonLogout         = "logout"
	RevokedReasonLogoutAll      = "logout_all"
	RevokedReasonPasswordChange = "password_change"
	RevokedReasonReuseDetected  = "security_reuse_detected"
)

// RefreshToken is the durable session record behind one refresh token.
// ID doubles as the JWT jti. TokenHash is the SHA-256 of the raw token
// string; the raw token is never persisted. FamilyID groups every token
// descended from one login so that reuse of a rotated-away token can
// revoke the whole chain.
type RefreshToken struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	TokenHash     string     `gorm:"column:token_hash;not null;uniqueIndex"`
	FamilyID      uuid.UUID  `gorm:"column:family_id;type:uuid;not null;index"`
	ExpiresAt     time.Time  `gorm:"column:expires_at;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	RevokedAt     *time.Time `gorm:"column:revoked_at"`
	RevokedReason *string    `gorm:"column:revoked_reason"`
	UserAgent     *string    `gorm:"column:user_agent"`
	IPAddress     *string    `gorm:"column:ip_address"`
}

func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}
