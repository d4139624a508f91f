package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflaxess123/obedi/app/models"
	"github.com/reflaxess123/obedi/pkg/apperror"
)

func TestUserCreateAndFind(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Create(f.ctx, NewUser{Email: " ann@example.com ", Name: "Ann"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, models.ProviderEmail, u.Provider)

	byEmail, err := f.users.FindByEmail(f.ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	missing, err := f.users.FindByID(f.ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserCreateDuplicateEmailIsConflict(t *testing.T) {
	f := newFixture(t)
	f.user(t, "dup@example.com")

	_, err := f.users.Create(f.ctx, NewUser{Email: "dup@example.com", Name: "Again"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.EqualValues(t, 1, f.count(t, &models.User{}))
}

func TestUserUpdate(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "bob@example.com")

	updated, err := f.users.Update(f.ctx, u.ID, UserUpdate{Name: ptr("Robert")})
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)
	assert.Nil(t, updated.AvatarURL)

	updated, err = f.users.Update(f.ctx, u.ID, UserUpdate{AvatarURL: ptr("https://img.test/a.png")})
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)
	require.NotNil(t, updated.AvatarURL)
	assert.Equal(t, "https://img.test/a.png", *updated.AvatarURL)

	_, err = f.users.Update(f.ctx, 999, UserUpdate{Name: ptr("Ghost")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.users.Get(f.ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserListNewestFirst(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")

	list, err := f.users.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
}
