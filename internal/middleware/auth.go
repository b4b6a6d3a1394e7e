package middleware

import (
	"net/http"
	"strings"

	apperrors "github.com/filerunner/backend/internal/errors"
	"github.com/filerunner/backend/internal/model"
	"github.com/filerunner/backend/internal/policy"
	"github.com/filerunner/backend/internal/service"
	"github.com/filerunner/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const identityKey = "auth_identity"

// AuthMiddleware turns a Bearer access token into a policy.Identity on
// the request context. Handlers read it back with CurrentUser and
// thread it explicitly into policy decisions.
type AuthMiddleware struct {
	tokens *service.TokenService
}

func NewAuthMiddleware(tokens *service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth rejects the request unless a valid access token is
// presented. Refresh tokens are never accepted here regardless of
// signature validity.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := m.resolveIdentity(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": apperrors.GetErrorMessage(err),
			})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// OptionalAuth resolves an identity when a valid token is present.
// Absence or failure of any resolution step yields anonymity, never a
// rejection: the request proceeds and a later credential (an API key)
// may still authorize it.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, err := m.resolveIdentity(c); err == nil {
			c.Set(identityKey, identity)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) resolveIdentity(c *gin.Context) (*policy.Identity, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, apperrors.ErrUnauthorized
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, apperrors.ErrUnauthorized
	}

	var (
		subject string
		email   string
		rawRole string
	)
	if claims, err := m.tokens.VerifyAccessToken(token); err == nil {
		subject = claims.Subject
		email = claims.Email
		rawRole = claims.Role
	} else {
		// Tokens minted before type tagging carry no token_type claim;
		// they still authenticate through the legacy decoder.
		legacy, legacyErr := m.tokens.VerifyLegacyToken(token)
		if legacyErr != nil {
			return nil, err
		}
		subject = legacy.Subject
		email = legacy.Email
		rawRole = legacy.Role
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, apperrors.ErrTokenError
	}

	role, err := model.ParseRole(rawRole)
	if err != nil {
		logger.GetLogger().Warn("Token carries unknown role",
			zap.String("user_id", subject),
			zap.String("role", rawRole))
		return nil, apperrors.ErrTokenError
	}

	return &policy.Identity{ID: userID, Email: email, Role: role}, nil
}

// CurrentUser returns the identity attached by RequireAuth or
// OptionalAuth, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *policy.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*policy.Identity)
	if !ok {
		return nil
	}
	return identity
}

// ExtractAPIKey pulls the project API key from the request, preferring
// the X-API-Key header over the api_key query parameter. A present but
// malformed key reads as absent.
func ExtractAPIKey(c *gin.Context) *uuid.UUID {
	raw := c.GetHeader("X-API-Key")
	if raw == "" {
		raw = c.Query("api_key")
	}
	if raw == "" {
		return nil
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &key
}
