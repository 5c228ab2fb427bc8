//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewUserRepository(pool)

	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     "student@example.com",
		Name:      "Student",
		Image:     "https://example.com/avatar.png",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	require.NoError(t, repo.Create(ctx, u))

	retrieved, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, retrieved.Email)
	assert.Equal(t, u.Name, retrieved.Name)
	assert.Equal(t, u.Image, retrieved.Image)
}

func TestUserRepository_Create_NullableFields(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewUserRepository(pool)

	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     "minimal@example.com",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	require.NoError(t, repo.Create(ctx, u))

	retrieved, err := repo.GetByEmail(ctx, "minimal@example.com")
	require.NoError(t, err)
	assert.Empty(t, retrieved.Name)
	assert.Empty(t, retrieved.Image)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewUserRepository(pool)

	_, err := repo.GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewUserRepository(pool)

	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     "dup@example.com",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.Create(ctx, u))

	dup := &domain.User{
		ID:        uuid.NewString(),
		Email:     "dup@example.com",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	assert.Error(t, repo.Create(ctx, dup))
}
