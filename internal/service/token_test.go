package service

import (
	"testing"
	"time"

	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService()
	userID := uuid.New()

	token, err := svc.IssueAccessToken(userID, "user@example.com", model.RoleUser)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService()
	userID, jti, familyID := uuid.New(), uuid.New(), uuid.New()

	token, err := svc.IssueRefreshToken(userID, jti, familyID)
	require.NoError(t, err)

	claims, err := svc.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, jti.String(), claims.ID)
	assert.Equal(t, familyID.String(), claims.FamilyID)
}

func TestTokenKindMismatchRejected(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService()

	access, err := svc.IssueAccessToken(uuid.New(), "user@example.com", model.RoleUser)
	require.NoError(t, err)
	refresh, err := svc.IssueRefreshToken(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	// A refresh token is never a valid access token, and vice versa,
	// even though both signatures verify.
	_, err = svc.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, apperrors.ErrTokenError)

	_, err = svc.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, apperrors.ErrTokenError)
}

func TestWrongSecretRejected(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService()
	other := NewTokenService("other-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := other.IssueAccessToken(uuid.New(), "user@example.com", model.RoleUser)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenError)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	t.Parallel()
	svc := NewTokenService("test-secret", -time.Minute, 7*24*time.Hour)

	token, err := svc.IssueAccessToken(uuid.New(), "user@example.com", model.RoleUser)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenError)
}

func TestLegacyTokenAccepted(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService()
	userID := uuid.New()

	// Mint an untagged token the way the pre-migration code did.
	claims := LegacyClaims{
		Email: "legacy@example.com",
		Role:  "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	// The typed decoders must refuse it.
	_, err = svc.VerifyAccessToken(raw)
	assert.ErrorIs(t, err, apperrors.ErrTokenError)

	got, err := svc.VerifyLegacyToken(raw)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), got.Subject)
	assert.Equal(t, "legacy@example.com", got.Email)
}

func TestLegacyDecoderRefusesTaggedTokens(t *testing.T) {
	t.Parallel()
	svc := newTestTokenService()

	refresh, err := svc.IssueRefreshToken(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	// A tagged token that fails its typed decode gets no second life
	// through the legacy path.
	_, err = svc.VerifyLegacyToken(refresh)
	assert.ErrorIs(t, err, apperrors.ErrTokenError)
}

func TestHashTokenDeterministic(t *testing.T) {
	t.Parallel()
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}
