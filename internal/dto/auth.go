package dto

import (
	"time"

	"github.com/filerunner/backend/internal/model"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=100"`
}

type UserInfo struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	Role               model.Role `json:"role"`
	MustChangePassword bool       `json:"must_change_password"`
	CreatedAt          time.Time  `json:"created_at"`
}

func NewUserInfo(user *model.User) UserInfo {
	return UserInfo{
		ID:                 user.ID,
		Email:              user.Email,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
		CreatedAt:          user.CreatedAt,
	}
}

// TokenResponse is the dual-token payload returned by register, login
// and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	User         *UserInfo `json:"user,omitempty"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}

type LogoutAllResponse struct {
	Message      string `json:"message"`
	RevokedCount int64  `json:"revoked_count"`
}

type ChangePasswordResponse struct {
	Message string `json:"message"`
}
