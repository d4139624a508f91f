package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reflaxess123/obedi/app/models"
	"github.com/reflaxess123/obedi/pkg/orm"
)

// LunchRepository handles database operations for Lunch and LunchImage.
type LunchRepository struct {
	db *gorm.DB
}

func NewLunchRepository(db *gorm.DB) *LunchRepository {
	return &LunchRepository{db: db}
}

func imagesByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position asc").Order("id asc")
}

// Create inserts a lunch without touching its images.
func (r *LunchRepository) Create(ctx context.Context, lunch *models.Lunch) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(lunch).Error
}

// FindByID loads a lunch with its images ordered by position. A missing
// lunch is (nil, nil).
func (r *LunchRepository) FindByID(ctx context.Context, id uint) (*models.Lunch, error) {
	var lunch models.Lunch
	err := r.db.WithContext(ctx).
		Preload("Images", imagesByPosition).
		First(&lunch, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lunch, nil
}

// Save writes every column of lunch. Images are left alone.
func (r *LunchRepository) Save(ctx context.Context, lunch *models.Lunch) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(lunch).Error
}

// Delete removes the lunch and its image rows in one transaction and
// returns the removed images.
func (r *LunchRepository) Delete(ctx context.Context, id uint) ([]models.LunchImage, error) {
	var images []models.LunchImage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lunch_id = ?", id).Find(&images).Error; err != nil {
			return err
		}
		if err := tx.Where("lunch_id = ?", id).Delete(&models.LunchImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Lunch{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

// List returns one page of lunches, newest first, optionally limited to one
// owner, plus the total count of matching lunches.
func (r *LunchRepository) List(ctx context.Context, ownerID *uint, page orm.Page) ([]models.Lunch, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Lunch{})
	if ownerID != nil {
		q = q.Where("user_id = ?", *ownerID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	lunches := make([]models.Lunch, 0, page.PerPage)
	err := q.Scopes(page.Scope()).
		Preload("Images", imagesByPosition).
		Order("created_at desc").Order("id desc").
		Find(&lunches).Error
	if err != nil {
		return nil, 0, err
	}
	return lunches, total, nil
}

// AddImage appends img after the lunch's highest position (1 when the lunch
// has no images). Position and insert share a transaction.
func (r *LunchRepository) AddImage(ctx context.Context, img *models.LunchImage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct{ Max int }
		err := tx.Model(&models.LunchImage{}).
			Select("COALESCE(MAX(position), 0) AS max").
			Where("lunch_id = ?", img.LunchID).
			Scan(&row).Error
		if err != nil {
			return err
		}
		img.Position = row.Max + 1
		return tx.Create(img).Error
	})
}

// FindImage returns the image if it belongs to the lunch, or (nil, nil).
func (r *LunchRepository) FindImage(ctx context.Context, lunchID, imageID uint) (*models.LunchImage, error) {
	var img models.LunchImage
	err := r.db.WithContext(ctx).
		Where("id = ? AND lunch_id = ?", imageID, lunchID).
		First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// DeleteImage removes one image row. Remaining positions are not renumbered.
func (r *LunchRepository) DeleteImage(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.LunchImage{}, id).Error
}

// ImageKeys returns every stored image key. Used to reconcile storage.
func (r *LunchRepository) ImageKeys(ctx context.Context) (map[string]bool, error) {
	var keys []string
	if err := r.db.WithContext(ctx).Model(&models.LunchImage{}).Pluck("key", &keys).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out, nil
}
