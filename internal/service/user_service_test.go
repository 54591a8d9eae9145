package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"member_portal/internal/apperror"
	"member_portal/internal/model"
	"member_portal/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedUsers(t *testing.T, repo repository.UserRepository, names ...string) []*model.User {
	t.Helper()
	users := make([]*model.User, 0, len(names))
	for _, name := range names {
		u := &model.User{Username: name, Email: name + "@x.com", PasswordHash: "hash"}
		require.NoError(t, repo.Create(context.Background(), u))
		users = append(users, u)
	}
	return users
}

func makeAdmin(t *testing.T, repo repository.UserRepository, u *model.User) *model.User {
	t.Helper()
	require.NoError(t, repo.GrantAdmin(context.Background(), u.ID))
	fresh, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	return fresh
}

func TestUserService_RecordAction_Concurrent(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := NewUserService(repo, zap.NewNop())
	u := seedUsers(t, repo, "alice")[0]

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.RecordAction(context.Background(), u.ID, model.ActionMembersView))
		}()
	}
	wg.Wait()

	stored, _ := repo.FindByID(context.Background(), u.ID)
	assert.Equal(t, int64(n), stored.Usage.MembersViews)
}

func TestUserService_RecordAction_Errors(t *testing.T) {
	svc := NewUserService(repository.NewMemoryUserRepository(), zap.NewNop())
	assert.ErrorIs(t, svc.RecordAction(context.Background(), 42, model.ActionLogin), ErrUserNotFound)

	faulty := &faultyRepo{UserRepository: repository.NewMemoryUserRepository(), incrementErr: errors.New("db down")}
	svc = NewUserService(faulty, zap.NewNop())
	err := svc.RecordAction(context.Background(), 1, model.ActionLogin)
	assert.Equal(t, apperror.StoreFailure, apperror.KindOf(err))
}

func TestUserService_ListUsers(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := NewUserService(repo, zap.NewNop())
	users := seedUsers(t, repo, "alice", "bob")
	admin := makeAdmin(t, repo, users[0])

	list, err := svc.ListUsers(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.ListUsers(context.Background(), users[1])
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListUsers(context.Background(), nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUserService_GrantAdmin_NonAdminForbidden(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := NewUserService(repo, zap.NewNop())
	users := seedUsers(t, repo, "alice", "bob")

	_, err := svc.GrantAdmin(context.Background(), users[1], []string{strconv.Itoa(users[0].ID)})
	assert.ErrorIs(t, err, ErrForbidden)

	stored, _ := repo.FindByID(context.Background(), users[0].ID)
	assert.False(t, stored.IsAdmin)
}

func TestUserService_GrantAdmin_PartialFailure(t *testing.T) {
	mem := repository.NewMemoryUserRepository()
	users := seedUsers(t, mem, "root", "alice", "bob", "carol")
	admin := makeAdmin(t, mem, users[0])
	repo := &faultyRepo{UserRepository: mem, grantErr: map[int]error{users[3].ID: errors.New("db down")}}
	svc := NewUserService(repo, zap.NewNop())

	ids := []string{strconv.Itoa(users[1].ID), "abc", "999", strconv.Itoa(users[2].ID), strconv.Itoa(users[3].ID)}
	result, err := svc.GrantAdmin(context.Background(), admin, ids)
	require.NoError(t, err)

	assert.Equal(t, []string{strconv.Itoa(users[1].ID), strconv.Itoa(users[2].ID)}, result.Succeeded)
	require.Len(t, result.Failed, 3)
	assert.Equal(t, model.BulkFailure{ID: "abc", Kind: string(apperror.Validation), Message: "Invalid user identifier"}, result.Failed[0])
	assert.Equal(t, "999", result.Failed[1].ID)
	assert.Equal(t, string(apperror.NotFound), result.Failed[1].Kind)
	assert.Equal(t, string(apperror.StoreFailure), result.Failed[2].Kind)
	assert.False(t, result.Complete())

	for _, u := range users[1:3] {
		stored, _ := mem.FindByID(context.Background(), u.ID)
		assert.True(t, stored.IsAdmin)
	}
	stored, _ := mem.FindByID(context.Background(), users[3].ID)
	assert.False(t, stored.IsAdmin)

	actor, _ := mem.FindByID(context.Background(), admin.ID)
	assert.Equal(t, int64(1), actor.Usage.RoleUpdates)
}

func TestUserService_GrantAdmin_NothingChangedNotCounted(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := NewUserService(repo, zap.NewNop())
	admin := makeAdmin(t, repo, seedUsers(t, repo, "root")[0])

	result, err := svc.GrantAdmin(context.Background(), admin, []string{"999"})
	require.NoError(t, err)
	assert.Empty(t, result.Succeeded)

	actor, _ := repo.FindByID(context.Background(), admin.ID)
	assert.Equal(t, int64(0), actor.Usage.RoleUpdates)
}

func TestUserService_DeleteUsers(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := NewUserService(repo, zap.NewNop())
	users := seedUsers(t, repo, "root", "alice", "bob")
	admin := makeAdmin(t, repo, users[0])

	aliceID := strconv.Itoa(users[1].ID)
	result, err := svc.DeleteUsers(context.Background(), admin, []string{aliceID, aliceID, strconv.Itoa(users[2].ID)})
	require.NoError(t, err)
	assert.True(t, result.Complete())
	assert.Len(t, result.Succeeded, 2)

	list, _ := repo.List(context.Background())
	require.Len(t, list, 1)
	assert.Equal(t, admin.ID, list[0].ID)
	assert.Equal(t, int64(1), list[0].Usage.Deletions)
}

func TestUserService_DeleteUsers_Self(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := NewUserService(repo, zap.NewNop())
	admin := makeAdmin(t, repo, seedUsers(t, repo, "root")[0])

	result, err := svc.DeleteUsers(context.Background(), admin, []string{strconv.Itoa(admin.ID)})
	require.NoError(t, err)
	assert.True(t, result.Complete())
}

func TestUserService_BootstrapAdmin(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := NewUserService(repo, zap.NewNop())
	u := seedUsers(t, repo, "root")[0]

	require.NoError(t, svc.BootstrapAdmin(context.Background(), "missing@x.com"))
	require.NoError(t, svc.BootstrapAdmin(context.Background(), u.Email))

	stored, _ := repo.FindByID(context.Background(), u.ID)
	assert.True(t, stored.IsAdmin)
}

func TestUserService_GrantAdmin_DuplicateIdentifiers(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	users := seedUsers(t, repo, "root", "alice")
	admin := makeAdmin(t, repo, users[0])
	svc := NewUserService(repo, zap.NewNop())

	id := strconv.Itoa(users[1].ID)
	result, err := svc.GrantAdmin(context.Background(), admin, []string{id, "0" + id, " " + id})
	require.NoError(t, err)

	assert.Equal(t, []string{id}, result.Succeeded)
	require.Len(t, result.Failed, 2)
	for i, raw := range []string{"0" + id, " " + id} {
		assert.Equal(t, model.BulkFailure{ID: raw, Kind: string(apperror.Validation), Message: "Duplicate identifier"}, result.Failed[i])
	}

	actor, _ := repo.FindByID(context.Background(), admin.ID)
	assert.Equal(t, int64(1), actor.Usage.RoleUpdates)
}
