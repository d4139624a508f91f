package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/reflaxess123/obedi/app/jobs"
	"github.com/reflaxess123/obedi/app/models"
	"github.com/reflaxess123/obedi/app/repositories"
	"github.com/reflaxess123/obedi/pkg/apperror"
	"github.com/reflaxess123/obedi/pkg/cache"
	"github.com/reflaxess123/obedi/pkg/logger"
	"github.com/reflaxess123/obedi/pkg/metrics"
	"github.com/reflaxess123/obedi/pkg/orm"
	"github.com/reflaxess123/obedi/pkg/queue"
	"github.com/reflaxess123/obedi/pkg/storage"
)

const (
	lunchCacheTTL  = 5 * time.Minute
	cleanupTimeout = 30 * time.Second
)

// ObjectStore is the storage gateway used for lunch images.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, contentType, folder string) (storage.Object, error)
	Delete(ctx context.Context, key string) error
}

// Dispatcher queues background jobs.
type Dispatcher interface {
	Dispatch(ctx context.Context, job queue.Job) error
}

// LunchInput carries the editable lunch fields. Nil fields are absent: on
// create they take their defaults, on update they are left unchanged.
type LunchInput struct {
	Title       *string            `json:"title"       validate:"max=255"`
	Recipe      *string            `json:"recipe"`
	Calories    *int               `json:"calories"    validate:"gte=0"`
	Proteins    *float64           `json:"proteins"    validate:"gte=0"`
	Fats        *float64           `json:"fats"        validate:"gte=0"`
	Carbs       *float64           `json:"carbs"       validate:"gte=0"`
	CookingTime *int               `json:"cookingTime" validate:"min=1"`
	Difficulty  *models.Difficulty `json:"difficulty"  validate:"in=EASY,MEDIUM,HARD"`
	Tags        []string           `json:"tags"`
}

// ImageInput registers an image that is already stored.
type ImageInput struct {
	URL    string `json:"url"    validate:"required"`
	Key    string `json:"key"    validate:"required"`
	Width  *int   `json:"width"  validate:"gte=0"`
	Height *int   `json:"height" validate:"gte=0"`
}

// LunchFilter narrows List to one owner.
type LunchFilter struct {
	OwnerID *uint
}

// LunchService is the catalog store. Only a lunch's owner may change it or
// its images.
type LunchService struct {
	lunches *repositories.LunchRepository
	store   ObjectStore
	queued  Dispatcher
	cache   *cache.Cache
}

// NewLunchService wires the catalog. queued and c may be nil.
func NewLunchService(lunches *repositories.LunchRepository, store ObjectStore, queued Dispatcher, c *cache.Cache) *LunchService {
	return &LunchService{lunches: lunches, store: store, queued: queued, cache: c}
}

func lunchCacheKey(id uint) string { return fmt.Sprintf("lunch:%d", id) }

// Get returns one lunch with its images.
func (s *LunchService) Get(ctx context.Context, id uint) (*models.Lunch, error) {
	var cached models.Lunch
	if s.cache.Get(ctx, lunchCacheKey(id), &cached) {
		return &cached, nil
	}

	lunch, err := s.lunches.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lunch == nil {
		return nil, apperror.NotFound("Lunch not found")
	}

	if err := s.cache.Set(ctx, lunchCacheKey(id), lunch, lunchCacheTTL); err != nil {
		logger.WithCtx(ctx).Warn("lunch cache write failed", "lunch_id", id, "error", err)
	}
	return lunch, nil
}

// List returns one page of lunches, newest first, and the total count.
func (s *LunchService) List(ctx context.Context, f LunchFilter, page orm.Page) ([]models.Lunch, int64, error) {
	return s.lunches.List(ctx, f.OwnerID, page)
}

// Create adds a lunch owned by ownerID.
func (s *LunchService) Create(ctx context.Context, ownerID uint, in LunchInput) (*models.Lunch, error) {
	lunch := &models.Lunch{
		UserID: ownerID,
		Title:  models.DefaultLunchTitle,
		Tags:   []string{},
		Images: []models.LunchImage{},
	}
	in.apply(lunch)
	if strings.TrimSpace(lunch.Title) == "" {
		lunch.Title = models.DefaultLunchTitle
	}

	if err := s.lunches.Create(ctx, lunch); err != nil {
		return nil, err
	}
	return lunch, nil
}

// Update changes the present fields of a lunch owned by callerID.
func (s *LunchService) Update(ctx context.Context, id, callerID uint, in LunchInput) (*models.Lunch, error) {
	lunch, err := s.owned(ctx, id, callerID, "You can only edit your own lunches")
	if err != nil {
		return nil, err
	}

	in.apply(lunch)
	if err := s.lunches.Save(ctx, lunch); err != nil {
		return nil, err
	}
	s.forget(ctx, id)
	return lunch, nil
}

func (in LunchInput) apply(l *models.Lunch) {
	if in.Title != nil {
		l.Title = *in.Title
	}
	if in.Recipe != nil {
		l.Recipe = in.Recipe
	}
	if in.Calories != nil {
		l.Calories = in.Calories
	}
	if in.Proteins != nil {
		l.Proteins = in.Proteins
	}
	if in.Fats != nil {
		l.Fats = in.Fats
	}
	if in.Carbs != nil {
		l.Carbs = in.Carbs
	}
	if in.CookingTime != nil {
		l.CookingTime = in.CookingTime
	}
	if in.Difficulty != nil {
		l.Difficulty = in.Difficulty
	}
	if in.Tags != nil {
		l.Tags = append([]string{}, in.Tags...)
	}
}

// Delete removes the lunch and its images. Storage objects are removed
// after the rows are gone; failures there never undo the delete.
func (s *LunchService) Delete(ctx context.Context, id, callerID uint) error {
	if _, err := s.owned(ctx, id, callerID, "You can only delete your own lunches"); err != nil {
		return err
	}

	images, err := s.lunches.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.forget(ctx, id)

	for _, img := range images {
		s.removeObject(ctx, img.Key, "lunch_delete")
	}
	logger.WithCtx(ctx).Info("lunch deleted", "lunch_id", id, "images", len(images))
	return nil
}

// AddImage attaches an already stored image after the last position.
func (s *LunchService) AddImage(ctx context.Context, lunchID, callerID uint, in ImageInput) (*models.LunchImage, error) {
	if _, err := s.owned(ctx, lunchID, callerID, "You can only edit your own lunches"); err != nil {
		return nil, err
	}

	img := &models.LunchImage{
		LunchID: lunchID,
		URL:     in.URL,
		Key:     in.Key,
		Width:   in.Width,
		Height:  in.Height,
	}
	if err := s.lunches.AddImage(ctx, img); err != nil {
		return nil, err
	}
	s.forget(ctx, lunchID)
	return img, nil
}

// DeleteImage removes one image row, then its stored object on a best
// effort basis.
func (s *LunchService) DeleteImage(ctx context.Context, lunchID, imageID, callerID uint) error {
	if _, err := s.owned(ctx, lunchID, callerID, "You can only edit your own lunches"); err != nil {
		return err
	}

	img, err := s.lunches.FindImage(ctx, lunchID, imageID)
	if err != nil {
		return err
	}
	if img == nil {
		return apperror.NotFound("Image not found")
	}

	if err := s.lunches.DeleteImage(ctx, img.ID); err != nil {
		return err
	}
	s.forget(ctx, lunchID)

	s.removeObject(ctx, img.Key, "image_delete")
	return nil
}

// UploadImage stores data and records it as the lunch's next image. When
// the row cannot be written the uploaded object is deleted again and the
// database error is returned.
func (s *LunchService) UploadImage(ctx context.Context, lunchID, callerID uint, data []byte, contentType string) (*models.LunchImage, error) {
	if _, err := s.owned(ctx, lunchID, callerID, "You can only edit your own lunches"); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, apperror.BadRequest("Only images are allowed")
	}
	if len(data) == 0 {
		return nil, apperror.BadRequest("File is empty")
	}

	obj, err := s.store.Upload(ctx, data, contentType, fmt.Sprintf("lunches/%d", lunchID))
	if err != nil {
		return nil, err
	}

	img := &models.LunchImage{LunchID: lunchID, URL: obj.URL, Key: obj.Key}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width, img.Height = &cfg.Width, &cfg.Height
	}

	if err := s.lunches.AddImage(ctx, img); err != nil {
		cctx, cancel := cleanupContext(ctx)
		defer cancel()

		log := logger.WithCtx(cctx)
		log.Error("image row not saved, removing uploaded object", "key", obj.Key, "error", err)
		if delErr := s.store.Delete(cctx, obj.Key); delErr != nil {
			log.Error("uploaded object cleanup failed", "key", obj.Key, "error", delErr)
			metrics.StorageCleanupFailures.WithLabelValues("compensation").Inc()
			s.enqueuePurge(cctx, obj.Key)
		}
		return nil, err
	}
	s.forget(ctx, lunchID)
	return img, nil
}

// owned loads a lunch and checks that callerID owns it.
func (s *LunchService) owned(ctx context.Context, id, callerID uint, denied string) (*models.Lunch, error) {
	lunch, err := s.lunches.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lunch == nil {
		return nil, apperror.NotFound("Lunch not found")
	}
	if lunch.UserID != callerID {
		return nil, apperror.Forbidden(denied)
	}
	return lunch, nil
}

// removeObject deletes a stored object without failing the caller. Failed
// deletions are logged and queued for another attempt.
func (s *LunchService) removeObject(ctx context.Context, key, reason string) {
	if !storage.IsManagedKey(key) {
		return
	}
	ctx, cancel := cleanupContext(ctx)
	defer cancel()

	if err := s.store.Delete(ctx, key); err != nil {
		logger.WithCtx(ctx).Warn("storage object not deleted", "key", key, "error", err)
		metrics.StorageCleanupFailures.WithLabelValues(reason).Inc()
		s.enqueuePurge(ctx, key)
	}
}

// cleanupContext keeps ctx's values but not its cancellation: storage
// cleanup has to finish even when the client has gone away.
func cleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}

func (s *LunchService) enqueuePurge(ctx context.Context, key string) {
	if s.queued == nil {
		return
	}
	if err := s.queued.Dispatch(ctx, jobs.NewPurgeStorageObject(s.store, key)); err != nil {
		logger.WithCtx(ctx).Error("purge job not queued", "key", key, "error", err)
	}
}

func (s *LunchService) forget(ctx context.Context, id uint) {
	if err := s.cache.Del(ctx, lunchCacheKey(id)); err != nil {
		logger.WithCtx(ctx).Warn("lunch cache invalidation failed", "lunch_id", id, "error", err)
	}
}
