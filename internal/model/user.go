package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is a closed set. Anything else coming out of a token or the
// database is rejected at the decode boundary, never defaulted.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type User struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email              string    `gorm:"column:email;unique;not null"`
	PasswordHash       string    `gorm:"column:password_hash;not null"`
	Role               Role      `gorm:"column:role;not null;default:user"`
	MustChangePassword bool      `gorm:"column:must_change_password;not null;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at"`
}
