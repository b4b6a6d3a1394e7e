package database

import (
	"errors"
	"time"

	"github.com/filerunner/backend/internal/model"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureAdminUser creates the bootstrap admin account on first boot.
// If any admin already exists the call is a no-op. A freshly seeded
// admin is forced through a password change on first login.
func EnsureAdminUser(db *gorm.DB, email, password string) error {
	var existing model.User
	err := db.Where("role = ?", model.RoleAdmin).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		ID:                 uuid.New(),
		Email:              email,
		PasswordHash:       string(hash),
		Role:               model.RoleAdmin,
		MustChangePassword: true,
		CreatedAt:          time.Now(),
	}

	return db.Create(&admin).Error
}
