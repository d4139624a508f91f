package services

import (
	"context"
	"strings"

	"github.com/reflaxess123/obedi/app/models"
	"github.com/reflaxess123/obedi/app/repositories"
	"github.com/reflaxess123/obedi/pkg/apperror"
)

// NewUser holds the fields of a user being provisioned.
type NewUser struct {
	Email        string
	Name         string
	PasswordHash *string
	Provider     models.AuthProvider
	ProviderID   *string
	AvatarURL    *string
}

// UserUpdate is a partial profile update; nil fields are left unchanged.
type UserUpdate struct {
	Name      *string `json:"name"      validate:"min=2,max=255"`
	AvatarURL *string `json:"avatarUrl" validate:"url"`
}

// UserService is the identity store: the only place users are looked up,
// created or changed.
type UserService struct {
	users *repositories.UserRepository
}

func NewUserService(users *repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// FindByEmail returns the user with email, or nil.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.FindByEmail(ctx, normalizeEmail(email))
}

// FindByID returns the user with id, or nil.
func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// Get is FindByID that fails with NotFound.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

// Create provisions a user. A taken email is a Conflict.
func (s *UserService) Create(ctx context.Context, in NewUser) (*models.User, error) {
	email := normalizeEmail(in.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict("Email already registered")
	}

	provider := in.Provider
	if provider == "" {
		provider = models.ProviderEmail
	}
	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: in.PasswordHash,
		Provider:     provider,
		ProviderID:   in.ProviderID,
		AvatarURL:    in.AvatarURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies the present fields of in. Unknown ids are NotFound.
func (s *UserService) Update(ctx context.Context, id uint, in UserUpdate) (*models.User, error) {
	columns := map[string]interface{}{}
	if in.Name != nil {
		columns["name"] = strings.TrimSpace(*in.Name)
	}
	if in.AvatarURL != nil {
		columns["avatar_url"] = *in.AvatarURL
	}

	user, err := s.users.Updates(ctx, id, columns)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return user, nil
}

// List returns every user, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.All(ctx)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
