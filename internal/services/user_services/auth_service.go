// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/iyunix/go-wellness/internal/auth"
	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/repository"
)

type AuthService struct {
	userRepo     repository.UserRepository
	jwtSecretKey string
	tokenTTL     time.Duration
	logger       Logger
}

func NewAuthService(userRepo repository.UserRepository, jwtSecretKey string, tokenTTL time.Duration, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		tokenTTL:     tokenTTL,
		logger:       logger,
	}
}

// Signup creates an account. Email is optional.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, &ValidationError{Message: "email address is not valid"}
		}
	}

	user := &domain.User{Username: username, Email: email}
	if err := user.HashPassword(password); err != nil {
		s.logger.Warn("signup rejected", "username", mask(username), "reason", "password")
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := user.IsValid(); err != nil {
		s.logger.Warn("signup rejected", "username", mask(username), "reason", "username")
		return nil, &ValidationError{Message: err.Error()}
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Warn("signup failed - username already exists", "username", mask(username))
			return nil, ErrUsernameTaken
		}
		s.logger.Error("user creation failed", "error", err, "username", mask(username))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered successfully", "username", mask(username), "user_id", created.ID)
	return created, nil
}

// Login checks credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_username", username != "",
			"has_password", password != "")
		return nil, "", &ValidationError{Message: "username and password are required"}
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("login failed - user not found", "username", mask(username))
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := user.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password", "username", mask(username), "user_id", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(user.ID, user.Username, []byte(s.jwtSecretKey), s.tokenTTL)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", user.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful", "username", mask(username), "user_id", user.ID)
	return user, token, nil
}

func (s *AuthService) ValidateToken(tokenString string) (uint, error) {
	if tokenString == "" {
		return 0, auth.ErrInvalidToken
	}
	userID, err := auth.ValidateToken(tokenString, []byte(s.jwtSecretKey))
	if err != nil {
		s.logger.Debug("JWT token validation failed", "error", err)
		return 0, err
	}
	return userID, nil
}

// Identify resolves a validated user ID into the request's caller.
func (s *AuthService) Identify(ctx context.Context, userID uint) (domain.Caller, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("identify user %d: %w", userID, err)
	}
	return domain.Caller{UserID: user.ID, Username: user.Username}, nil
}
