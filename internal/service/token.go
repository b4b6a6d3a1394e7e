package service

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// AccessClaims are stateless: validity is purely signature plus expiry.
type AccessClaims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// RefreshClaims carry the jti (RegisteredClaims.ID) and family id that
// tie the token to its session store row.
type RefreshClaims struct {
	FamilyID  string `json:"family_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// LegacyClaims is the pre-migration single-token format with no kind
// tag. Kept isolated so the whole legacy path can be deleted once all
// clients have moved to the dual-token flow.
type LegacyClaims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies JWTs. Access and refresh tokens share
// the signing secret but carry an explicit token_type claim; a refresh
// token presented where an access token is expected fails verification
// outright, it is never silently accepted.
type TokenService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokenService(secret string, accessExpiry, refreshExpiry time.Duration) *TokenService {
	return &TokenService{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

func (s *TokenService) AccessExpiry() time.Duration {
	return s.accessExpiry
}

func (s *TokenService) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}

// IssueAccessToken creates a short-lived access token for the user.
func (s *TokenService) IssueAccessToken(userID uuid.UUID, email string, role model.Role) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Email:     email,
		Role:      string(role),
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return signed, nil
}

// IssueRefreshToken creates a long-lived refresh token bound to a jti
// and token family.
func (s *TokenService) IssueRefreshToken(userID, jti, familyID uuid.UUID) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		FamilyID:  familyID.String(),
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return signed, nil
}

// VerifyAccessToken validates signature, expiry and the token kind.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, apperrors.ErrTokenError
	}
	return claims, nil
}

// VerifyRefreshToken validates signature, expiry and the token kind.
func (s *TokenService) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, apperrors.ErrTokenError
	}
	return claims, nil
}

// VerifyLegacyToken accepts the old untagged format. Must never be the
// first decode attempt for newly issued tokens.
func (s *TokenService) VerifyLegacyToken(tokenString string) (*LegacyClaims, error) {
	claims := &LegacyClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	// A tagged token that failed its typed decode does not get a second
	// life through the legacy path.
	if claims.TokenType == tokenTypeAccess || claims.TokenType == tokenTypeRefresh {
		return nil, apperrors.ErrTokenError
	}
	return claims, nil
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrTokenError
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return apperrors.WrapError(apperrors.ErrTokenError, err)
	}
	if !token.Valid {
		return apperrors.ErrTokenError
	}
	return nil
}

// HashToken is the deterministic lookup key for refresh token rows.
// Only the hash ever touches the database.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
