// Package auth implements the signup/login/refresh/logout lifecycle over the
// single-slot refresh token stored on the user record.
package auth

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"foliotrack/apperr"
	"foliotrack/models"
	"foliotrack/storage"
	"foliotrack/token"
)

type Service struct {
	users  storage.UserStore
	tokens *token.Service
	log    zerolog.Logger
}

func NewService(users storage.UserStore, tokens *token.Service, log zerolog.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		log:    log.With().Str("component", "auth").Logger(),
	}
}

type SignupInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// TokenPair is the issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Signup creates a user and starts a session. The refresh token is persisted
// on the user record so it can be revoked server-side.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*models.User, *TokenPair, error) {
	if input.Email == "" || input.Password == "" || input.Name == "" {
		return nil, nil, apperr.Validation("Email, password, and name are required")
	}

	if existing, err := s.users.GetUserByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, nil, apperr.Validation("Email already registered")
	} else if err != nil {
		if _, operational := apperr.Operational(err); !operational {
			return nil, nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Email:    input.Email,
		Password: string(hash),
		Name:     input.Name,
		Phone:    input.Phone,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().Uint("userId", user.ID).Msg("user signed up")
	return user, pair, nil
}

// Login verifies credentials and rotates the stored refresh token, which
// invalidates any previously issued refresh token for the user.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	if email == "" || password == "" {
		return nil, nil, apperr.Validation("Email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if _, operational := apperr.Operational(err); operational {
			return nil, nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, apperr.Unauthorized("Invalid credentials")
	}

	pair, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates a refresh token. The presented token must verify
// cryptographically and match the stored slot exactly; a valid-but-superseded
// token is rejected, which detects reuse of a rotated-out token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperr.Validation("Refresh token is required")
	}

	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if _, operational := apperr.Operational(err); operational {
			return nil, apperr.Unauthorized("Invalid refresh token")
		}
		return nil, err
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		s.log.Warn().Uint("userId", userID).Msg("superseded or revoked refresh token presented")
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	return s.startSession(ctx, userID)
}

// Logout clears the stored refresh token, making previously issued refresh
// tokens permanently unusable even while cryptographically valid.
func (s *Service) Logout(ctx context.Context, userID uint) error {
	return s.users.SetRefreshToken(ctx, userID, nil)
}

// Me returns the current user.
func (s *Service) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

func (s *Service) startSession(ctx context.Context, userID uint) (*TokenPair, error) {
	access, refresh, err := s.tokens.IssuePair(userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, userID, &refresh); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
