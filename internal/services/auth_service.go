package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"
	"tokoadmin/internal/tokens"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest password bcrypt can hash.
const maxPasswordBytes = 72

var errPasswordTooLong = apperrors.Validation(fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo repositories.UserRepository
	signer   *tokens.Signer
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, signer *tokens.Signer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		signer:   signer,
	}
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string          `json:"token"`
	User  models.UserView `json:"user"`
}

// RegisterUser creates a user when the email is unused and returns a signed token.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name, email = strings.TrimSpace(name), normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.Validation("Please provide name, email, and password")
	}
	if len(password) > maxPasswordBytes {
		return nil, errPasswordTooLong
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.Conflict("User already exists")
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Name: name, Email: email, Password: hashed}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// LoginUser verifies the password. An unknown email and a wrong password fail
// with the same error.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.Validation("Please provide email and password")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidCredentials()
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.InvalidCredentials()
	}
	return s.issue(user)
}

// GetMe returns the user identified by a decoded token.
func (s *AuthService) GetMe(ctx context.Context, userID uint) (*models.UserView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := user.View()
	view.CreatedAt = &user.CreatedAt
	return &view, nil
}

// UpdateProfile changes name and email, and the password only when a non-blank
// one is given.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, name, email, password string) (*models.UserView, error) {
	name, email = strings.TrimSpace(name), normalizeEmail(email)
	if name == "" || email == "" {
		return nil, apperrors.Validation("Name and email are required")
	}
	if len(password) > maxPasswordBytes {
		return nil, errPasswordTooLong
	}

	taken, err := s.userRepo.EmailTakenByOther(ctx, email, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.Conflict("Email is already used by another user")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.Email = email
	if strings.TrimSpace(password) != "" {
		if user.Password, err = hashPassword(password); err != nil {
			return nil, err
		}
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// ValidateToken parses and validates a token.
func (s *AuthService) ValidateToken(tokenString string) (tokens.Claims, error) {
	return s.signer.Parse(tokenString)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.signer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Internal("failed to generate token", err)
	}
	return &AuthResult{Token: token, User: user.View()}, nil
}

// normalizeEmail makes emails compare case-insensitively.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", errPasswordTooLong
	}
	if err != nil {
		return "", apperrors.Internal("failed to hash password", fmt.Errorf("bcrypt: %w", err))
	}
	return string(hashed), nil
}
