package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepDeletesOrphansOnSecondPass(t *testing.T) {
	f := newFixture(t)
	chef := f.user(t, "chef@example.com")
	l := f.lunch(t, chef.ID, "Soup")

	kept, err := f.lunches.UploadImage(f.ctx, l.ID, chef.ID, pngBytes(t, 1, 1), "image/png")
	require.NoError(t, err)
	require.NoError(t, f.disk.Put(f.ctx, "lunches/99/orphan.png", []byte("x"), "image/png"))
	require.NoError(t, f.disk.Put(f.ctx, "avatars/elsewhere.png", []byte("x"), "image/png"))

	sweeper := NewStorageSweeper(f.lunchRepo, f.disk, f.gateway, 2)

	rep, err := sweeper.Sweep(f.ctx, false, false)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Scanned)
	assert.Equal(t, []string{"lunches/99/orphan.png"}, rep.Orphans)
	assert.Equal(t, 1, rep.Deferred)
	assert.Equal(t, 0, rep.Deleted)
	assert.True(t, f.disk.Exists(f.ctx, "lunches/99/orphan.png"))

	rep, err = sweeper.Sweep(f.ctx, false, false)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Deleted)
	assert.False(t, f.disk.Exists(f.ctx, "lunches/99/orphan.png"))
	assert.True(t, f.disk.Exists(f.ctx, kept.Key))
	assert.True(t, f.disk.Exists(f.ctx, "avatars/elsewhere.png"))
}

func TestSweepDryRunAndImmediate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.disk.Put(f.ctx, "lunches/1/a.png", []byte("x"), "image/png"))
	require.NoError(t, f.disk.Put(f.ctx, "lunches/1/b.png", []byte("x"), "image/png"))

	sweeper := NewStorageSweeper(f.lunchRepo, f.disk, f.gateway, 2)

	rep, err := sweeper.Sweep(f.ctx, true, true)
	require.NoError(t, err)
	assert.Len(t, rep.Orphans, 2)
	assert.Equal(t, 0, rep.Deleted)
	assert.Equal(t, 2, f.disk.Len())

	rep, err = sweeper.Sweep(f.ctx, true, false)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Deleted)
	assert.Equal(t, 0, f.disk.Len())
}

func TestSweepDryRunDoesNotConfirmOrphans(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.disk.Put(f.ctx, "lunches/1/a.png", []byte("x"), "image/png"))

	sweeper := NewStorageSweeper(f.lunchRepo, f.disk, f.gateway, 2)

	rep, err := sweeper.Sweep(f.ctx, false, true)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Deferred)

	rep, err = sweeper.Sweep(f.ctx, false, false)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Deleted)
	assert.Equal(t, 1, rep.Deferred)
	assert.True(t, f.disk.Exists(f.ctx, "lunches/1/a.png"))

	// A dry run between two real passes keeps the earlier sighting.
	_, err = sweeper.Sweep(f.ctx, false, true)
	require.NoError(t, err)

	rep, err = sweeper.Sweep(f.ctx, false, false)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Deleted)
	assert.False(t, f.disk.Exists(f.ctx, "lunches/1/a.png"))
}
