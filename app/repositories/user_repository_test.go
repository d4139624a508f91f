package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/reflaxess123/obedi/app/models"
	_ "github.com/reflaxess123/obedi/database/migrations"
	"github.com/reflaxess123/obedi/pkg/apperror"
	"github.com/reflaxess123/obedi/pkg/database"
	"github.com/reflaxess123/obedi/pkg/migration"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, migration.New(db).Quiet().Run())
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestCreateDuplicateEmailIsConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	first := &models.User{Email: "same@example.com", Name: "First", Provider: models.ProviderEmail}
	require.NoError(t, repo.Create(ctx, first))

	// Skips FindByEmail, as a request racing the first one would.
	second := &models.User{Email: "same@example.com", Name: "Second", Provider: models.ProviderEmail}
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.ErrorIs(t, err, apperror.Conflict("Email already registered"))

	u, err := repo.FindByEmail(ctx, "same@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, first.ID, u.ID)
}
