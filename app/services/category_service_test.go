package services

import (
	"context"
	"errors"
	"testing"

	"inkpost/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	service := NewCategoryService(mock.NewCategoryRepository(), 0)

	t.Run("empty list", func(t *testing.T) {
		categories, err := service.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, categories)
	})

	t.Run("create", func(t *testing.T) {
		category, err := service.Create(ctx, CategoryInput{Name: "  Go  "})
		require.NoError(t, err)
		assert.Equal(t, int64(1), category.ID)
		assert.Equal(t, "Go", category.Name)
		assert.False(t, category.CreatedAt.IsZero())
	})

	t.Run("duplicate", func(t *testing.T) {
		_, err := service.Create(ctx, CategoryInput{Name: "Go"})
		assert.ErrorIs(t, err, ErrDuplicateCategory)
	})

	t.Run("case sensitive", func(t *testing.T) {
		_, err := service.Create(ctx, CategoryInput{Name: "go"})
		assert.NoError(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := service.Create(ctx, CategoryInput{Name: " "})
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "name", ve.Fields[0].Param)
	})

	t.Run("seed skips existing names", func(t *testing.T) {
		created, err := service.Seed(ctx, []string{"Go", "Rust", "Zig"})
		require.NoError(t, err)
		assert.Equal(t, 2, created)

		created, err = service.Seed(ctx, DefaultCategories)
		require.NoError(t, err)
		assert.Equal(t, len(DefaultCategories), created)

		created, err = service.Seed(ctx, DefaultCategories)
		require.NoError(t, err)
		assert.Zero(t, created)

		categories, err := service.List(ctx)
		require.NoError(t, err)
		assert.Len(t, categories, 4+len(DefaultCategories))
		assert.Equal(t, "Go", categories[0].Name)
	})
}
