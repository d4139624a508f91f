package services

import (
	"context"
	"errors"
	"strings"

	"github.com/reflaxess123/obedi/app/models"
	"github.com/reflaxess123/obedi/pkg/apperror"
	"github.com/reflaxess123/obedi/pkg/auth"
	"github.com/reflaxess123/obedi/pkg/logger"
)

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"     validate:"required,min=2"`
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleInput is the body of POST /auth/google.
type GoogleInput struct {
	IDToken string `json:"idToken" validate:"required"`
}

// Session is the outcome of a successful sign-in.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// AuthService signs users in and mints their tokens. User records are only
// touched through the identity store.
type AuthService struct {
	users  *UserService
	tokens *auth.Tokens
	google auth.GoogleVerifier
}

func NewAuthService(users *UserService, tokens *auth.Tokens, google auth.GoogleVerifier) *AuthService {
	return &AuthService{users: users, tokens: tokens, google: google}
}

// Register creates an EMAIL user with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, NewUser{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: &hash,
		Provider:     models.ProviderEmail,
	})
	if err != nil {
		return nil, err
	}

	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID)
	return s.session(user)
}

// Login checks an email/password pair. Every failure reads the same.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Provider != models.ProviderEmail || user.PasswordHash == nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	if !auth.CheckPassword(*user.PasswordHash, in.Password) {
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	return s.session(user)
}

// Google signs in with a Google ID token, provisioning the user on first
// use. An email already registered with a password is a Conflict.
func (s *AuthService) Google(ctx context.Context, in GoogleInput) (*Session, error) {
	profile, err := s.google.Verify(ctx, in.IDToken)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidGoogleToken) {
			logger.WithCtx(ctx).Warn("google token verification failed", "error", err)
		}
		return nil, apperror.Unauthorized("Invalid Google token")
	}

	user, err := s.users.FindByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}
	if user != nil && user.Provider != models.ProviderGoogle {
		return nil, apperror.Conflict("Email already registered with password")
	}

	if user == nil {
		name := profile.Name
		if name == "" {
			name, _, _ = strings.Cut(profile.Email, "@")
		}
		in := NewUser{
			Email:    profile.Email,
			Name:     name,
			Provider: models.ProviderGoogle,
		}
		if profile.Picture != "" {
			in.AvatarURL = &profile.Picture
		}
		if profile.Sub != "" {
			in.ProviderID = &profile.Sub
		}
		if user, err = s.users.Create(ctx, in); err != nil {
			return nil, err
		}
		logger.WithCtx(ctx).Info("user provisioned from google", "user_id", user.ID)
	}

	return s.session(user)
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperror.Unauthorized("No refresh token")
	}
	claims, err := s.tokens.Validate(refreshToken, auth.TypeRefresh)
	if err != nil {
		return "", apperror.Unauthorized("Invalid refresh token")
	}
	id, err := claims.UserID()
	if err != nil {
		return "", apperror.Unauthorized("Invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperror.Unauthorized("User not found")
	}
	return s.tokens.Access(user.ID, user.Email)
}

// Me returns the signed-in user.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthorized("User not found")
	}
	return user, nil
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	access, err := s.tokens.Access(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Refresh(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}
