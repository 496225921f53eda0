package services

import (
	"errors"
	"fmt"

	"netguard/internal/models"
	"netguard/internal/repositories"

	"go.uber.org/zap"
)

// SignupRequest is the signup form. Empty values are allowed; the handler
// only requires every key to be submitted.
type SignupRequest struct {
	Name            string `form:"name" validate:"max=255"`
	Email           string `form:"email" validate:"max=255"`
	Password        string `form:"password" validate:"max=255"`
	ConfirmPassword string `form:"confirm_password" validate:"max=255"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `form:"email" validate:"max=255"`
	Password string `form:"password" validate:"max=255"`
}

// AuthService handles signup and login against the credential store.
// No session or token is issued on login.
type AuthService struct {
	userRepo repositories.UserRepository
	policy   PasswordPolicy
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService. A nil policy means plaintext.
func NewAuthService(userRepo repositories.UserRepository, policy PasswordPolicy, logger *zap.Logger) *AuthService {
	if policy == nil {
		policy = PlaintextPolicy{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo: userRepo,
		policy:   policy,
		logger:   logger,
	}
}

// Signup registers a new user. It returns ErrPasswordMismatch before touching
// the store, and ErrEmailRegistered when the email is taken.
func (s *AuthService) Signup(req SignupRequest) (*models.User, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	stored, err := s.policy.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: stored,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrEmailRegistered
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Login checks the supplied credentials.
func (s *AuthService) Login(req LoginRequest) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotRegistered
	}

	ok, err := s.policy.Matches(user.Password, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrIncorrectPassword
	}

	s.logger.Info("user logged in", zap.Uint("user_id", user.ID))
	return user, nil
}
