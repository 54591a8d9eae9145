package service

import (
	"context"
	"errors"
	"fmt"

	"member_portal/internal/apperror"
	"member_portal/internal/model"
	"member_portal/internal/repository"
	"member_portal/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists        = apperror.NewDuplicate("User already exists")
	ErrEmailExists       = apperror.NewDuplicate("Email already exists")
	ErrUserNotFound      = apperror.NewNotFound("User not found")
	ErrIncorrectPassword = apperror.NewInvalidCredential("Incorrect password")
	ErrInvalidToken      = apperror.NewInvalidCredential("Invalid or expired token")
	ErrPasswordTooLong   = apperror.NewValidation("Password must be at most 72 bytes", nil)
)

// bcrypt only accepts passwords up to this many bytes
const maxPasswordBytes = 72

// AuthService provides signup, login and credential verification
type AuthService interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// TokenManager issues and verifies session tokens. *utils.JWTUtil implements it.
type TokenManager interface {
	GenerateToken(user *model.User) (string, error)
	ValidateToken(token string) (*utils.JWTClaims, error)
}

type authService struct {
	userRepo   repository.UserRepository
	tokens     TokenManager
	bcryptCost int
	log        *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, tokens TokenManager, bcryptCost int, log *zap.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

// Signup creates a new member account. New users are never admins and
// start with every counter at zero.
func (s *authService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	if len(req.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	existing, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.NewStoreFailure("Internal server error", fmt.Errorf("failed to check username: %w", err))
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	existing, err = s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.NewStoreFailure("Internal server error", fmt.Errorf("failed to check email: %w", err))
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, apperror.NewStoreFailure("Internal server error", err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	}

	// The lookups above race with concurrent signups; the store's unique
	// constraints have the final word.
	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, ErrUserExists
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailExists
		}
		return nil, apperror.NewStoreFailure("An error occurred during insertion", err)
	}

	s.log.Info("user signed up", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login verifies the password, counts the login and issues a session token
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", apperror.NewStoreFailure("An error occurred during login", fmt.Errorf("error finding user by email: %w", err))
	}
	if user == nil {
		return nil, "", ErrUserNotFound
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrIncorrectPassword
	}

	// Sign before counting so a login that fails here is never counted.
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, "", apperror.NewStoreFailure("An error occurred during login", err)
	}

	count, err := s.userRepo.IncrementCounter(ctx, user.ID, model.ActionLogin)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", apperror.NewStoreFailure("An error occurred during login", err)
	}
	user.Usage.Logins = count

	return user, token, nil
}

// Authenticate resolves a session token to the current state of its user.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, apperror.New(apperror.InvalidCredential, ErrInvalidToken.Message, err)
	}

	user, err := s.userRepo.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, apperror.NewStoreFailure("Internal server error", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
