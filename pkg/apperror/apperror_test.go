package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reflaxess123/obedi/pkg/apperror"
)

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("orders: %w", apperror.NotFound("Order not found"))

	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.False(t, errors.Is(err, apperror.ErrForbidden))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, apperror.Kind(0), apperror.KindOf(errors.New("boom")))
	_, ok := apperror.As(errors.New("boom"))
	assert.False(t, ok)
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "conflict: Email already registered", apperror.Conflict("Email already registered").Error())
}

func TestKindHelpers(t *testing.T) {
	wrapped := fmt.Errorf("users: %w", apperror.Conflict("Email already registered"))

	assert.True(t, apperror.IsConflict(wrapped))
	assert.False(t, apperror.IsNotFound(wrapped))
	assert.True(t, apperror.IsNotFound(apperror.NotFound("Lunch not found")))
	assert.True(t, apperror.IsForbidden(apperror.Forbidden("Access denied")))
	assert.True(t, apperror.IsBadRequest(apperror.BadRequest("Invalid order status")))
	assert.True(t, apperror.IsUnauthorized(apperror.Unauthorized("Invalid credentials")))
	assert.False(t, apperror.IsConflict(errors.New("boom")))
	assert.False(t, apperror.IsConflict(nil))
}
