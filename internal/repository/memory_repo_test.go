package repository

import (
	"context"
	"sync"
	"testing"

	"member_portal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserRepository_CreateAndFind(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user := &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, 1, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", byEmail.Username)

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	missing, err := repo.FindByEmail(ctx, "A@X.COM")
	require.NoError(t, err)
	assert.Nil(t, missing, "email lookup is case-sensitive")
}

func TestMemoryUserRepository_Duplicates(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.User{Username: "alice", Email: "a@x.com"}))

	assert.ErrorIs(t, repo.Create(ctx, &model.User{Username: "alice", Email: "other@x.com"}), ErrDuplicateUsername)
	assert.ErrorIs(t, repo.Create(ctx, &model.User{Username: "other", Email: "a@x.com"}), ErrDuplicateEmail)

	users, _ := repo.List(ctx)
	assert.Len(t, users, 1)
}

func TestMemoryUserRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	user := &model.User{Username: "alice", Email: "a@x.com"}
	require.NoError(t, repo.Create(ctx, user))

	found, _ := repo.FindByID(ctx, user.ID)
	found.IsAdmin = true

	again, _ := repo.FindByID(ctx, user.ID)
	assert.False(t, again.IsAdmin)
}

func TestMemoryUserRepository_ConcurrentIncrements(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	user := &model.User{Username: "alice", Email: "a@x.com"}
	require.NoError(t, repo.Create(ctx, user))

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.IncrementCounter(ctx, user.ID, model.ActionAPICall)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	found, _ := repo.FindByID(ctx, user.ID)
	assert.Equal(t, int64(n), found.Usage.APICalls)
}

func TestMemoryUserRepository_GrantAndDelete(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	user := &model.User{Username: "alice", Email: "a@x.com"}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.GrantAdmin(ctx, user.ID))
	found, _ := repo.FindByID(ctx, user.ID)
	assert.True(t, found.IsAdmin)

	require.NoError(t, repo.Delete(ctx, user.ID))
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), ErrNotFound)
	assert.ErrorIs(t, repo.GrantAdmin(ctx, user.ID), ErrNotFound)
	_, err := repo.IncrementCounter(ctx, user.ID, model.ActionLogin)
	assert.ErrorIs(t, err, ErrNotFound)
}
