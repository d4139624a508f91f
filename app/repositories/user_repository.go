package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/reflaxess123/obedi/app/models"
	"github.com/reflaxess123/obedi/pkg/apperror"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by their email address. A missing user is
// reported as (nil, nil).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByID looks up a user by primary key. A missing user is (nil, nil).
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create persists a new user record. A taken email is a Conflict, also
// when a concurrent insert won the race past the caller's lookup.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict("Email already registered")
	}
	return err
}

// Updates writes the given columns and reloads the row. Returns (nil, nil)
// when no user has that id.
func (r *UserRepository) Updates(ctx context.Context, id uint, columns map[string]interface{}) (*models.User, error) {
	db := r.db.WithContext(ctx)
	if len(columns) > 0 {
		res := db.Model(&models.User{}).Where("id = ?", id).Updates(columns)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.FindByID(ctx, id)
}

// All returns every user, newest first.
func (r *UserRepository) All(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&users).Error
	return users, err
}
