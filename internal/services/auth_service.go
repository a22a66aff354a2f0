package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"momo/internal/models"
	"momo/internal/repositories"
)

// AuthService handles registration and login.
type AuthService struct {
	userRepo repositories.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// LoginResult is the identity established by a successful login.
type LoginResult struct {
	User *models.User
	// Upgraded is true when the stored credential was rewritten during login.
	Upgraded bool
}

// RegisterUser creates a user with a hashed password. Returns ErrValidation
// for passwords over MaxPasswordBytes and ErrConflict if the username or the
// email is already taken.
func (s *AuthService) RegisterUser(ctx context.Context, username, password, email string) (*models.User, error) {
	if len(password) > MaxPasswordBytes {
		return nil, fmt.Errorf("password longer than %d bytes: %w", MaxPasswordBytes, ErrValidation)
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("username '%s': %w", username, ErrConflict)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email '%s': %w", email, ErrConflict)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: username,
		Password: hashed,
		Email:    email,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can still win the race to the unique index.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("username '%s': %w", username, ErrConflict)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// LoginUser verifies a username and password. Unknown users and wrong
// passwords both yield ErrInvalidCredentials. Credentials kept in a legacy
// format (plaintext or werkzeug hashes) are rewritten as bcrypt before the
// login is reported successful; if that write fails the login fails.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, upgrade := verifyPassword(user.Password, password)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if upgrade {
		hashed, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdatePassword(ctx, user.ID, hashed); err != nil {
			return nil, fmt.Errorf("failed to upgrade stored password: %w", err)
		}
		user.Password = hashed
		log.Printf("Upgraded stored password of user %s to bcrypt", user.ID)
	}
	return &LoginResult{User: user, Upgraded: upgrade}, nil
}
