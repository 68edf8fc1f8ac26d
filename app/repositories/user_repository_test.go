package repositories

import (
	"context"
	"testing"

	"inkpost/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentity(username, email string) *models.Identity {
	user := &models.Identity{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$hash",
	}
	user.BeforeCreate()
	return user
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := store.Users

	alice := newIdentity("alice", "alice@example.com")
	require.NoError(t, repo.Create(ctx, alice))
	assert.Equal(t, int64(1), alice.ID)

	t.Run("get by id", func(t *testing.T) {
		found, err := repo.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)
		assert.Equal(t, "$2a$04$hash", found.PasswordHash)
	})

	t.Run("get by email", func(t *testing.T) {
		found, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, found.ID)

		_, err = repo.GetByEmail(ctx, "ALICE@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 404)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	tests := []struct {
		name    string
		user    *models.Identity
		wantErr error
	}{
		{"duplicate email", newIdentity("alice2", "alice@example.com"), ErrDuplicateEmail},
		{"duplicate username", newIdentity("alice", "other@example.com"), ErrDuplicateUsername},
		{"distinct identity", newIdentity("bob", "bob@example.com"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, int64(2), tt.user.ID)
		})
	}

	t.Run("failed creates leave no index behind", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "other@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
