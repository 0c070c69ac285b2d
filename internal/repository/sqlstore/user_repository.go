// File: internal/repository/sqlstore/user_repository.go
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/repository"
)

type userRepository struct {
	db *gorm.DB
}

// Create inserts a new user record.
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := user.IsValid(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		err = translate(err)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, repository.ErrDuplicate
		}
		log.Printf("[UserRepository] Create error for username %s: %v", user.Username, err)
		return nil, fmt.Errorf("database error creating user: %w", err)
	}
	return user, nil
}

// FindByID finds a user by their ID.
func (r *userRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if id == 0 {
		return nil, repository.ErrNotFound
	}
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return r.handleFindError(err, &user, "FindByID", id)
}

// FindByUsername finds a user by their username.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, repository.ErrNotFound
	}
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return r.handleFindError(err, &user, "FindByUsername", username)
}

func (r *userRepository) handleFindError(err error, user *domain.User, methodName string, identifier interface{}) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		log.Printf("[UserRepository] %s error for %v: %v", methodName, identifier, err)
		return nil, fmt.Errorf("database error finding user: %w", err)
	}
	return user, nil
}
