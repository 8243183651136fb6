package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamaccts/internal/model"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(newTestDB(t))

	_, err := users.FindByID(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	now := time.Now()
	require.NoError(t, users.Create(ctx, &model.User{ID: "u1", Email: "a@example.com", DisplayName: "A", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, users.Create(ctx, &model.User{ID: "u1", Email: "b@example.com", CreatedAt: now, UpdatedAt: now}))

	require.NoError(t, users.SetAdmin(ctx, "u1", true))
	require.NoError(t, users.UpdateDisplayName(ctx, "u1", "Alice"))

	got, err := users.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email, "second create is ignored")
	assert.Equal(t, "Alice", got.DisplayName)
	assert.True(t, got.IsAdmin)

	assert.ErrorIs(t, users.SetAdmin(ctx, "missing", true), ErrNotFound)
	assert.ErrorIs(t, users.UpdateDisplayName(ctx, "missing", "x"), ErrNotFound)
}
