package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fsic-records-api-server/internal/auth"
	"fsic-records-api-server/internal/logger"
	"fsic-records-api-server/internal/models"
)

func init() {
	auth.HashCost = bcrypt.MinCost
}

func newUsers() (*UserService, *memUsers) {
	repo := newMemUsers()
	return NewUserService(repo, FixedClock(time.Now()), logger.Nop()), repo
}

func TestFirstUserIsAdminRestAreStaff(t *testing.T) {
	svc, _ := newUsers()
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateUserInput{Username: "chief", Password: "secret1", FirstName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)

	second, err := svc.Create(ctx, CreateUserInput{Username: "clerk", Password: "secret2", FirstName: "Ben"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, second.Role)

	assert.NotEqual(t, "secret1", first.Password)
	assert.True(t, auth.CheckPasswordHash("secret1", first.Password))
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newUsers()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Username: "", Password: "secret1", FirstName: "A"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, CreateUserInput{Username: "a b", Password: "secret1", FirstName: "A"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, CreateUserInput{Username: "ab", Password: "123", FirstName: "A"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Create(ctx, CreateUserInput{Username: "ab", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateUserInput{Username: "ab", Password: "secret1", FirstName: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateUserInput{Username: "ab", Password: "secret1", FirstName: "B"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestDeleteAdminIsRefused(t *testing.T) {
	svc, repo := newUsers()
	ctx := context.Background()

	admin, err := svc.Create(ctx, CreateUserInput{Username: "chief", Password: "secret1", FirstName: "Ana"})
	require.NoError(t, err)
	staff, err := svc.Create(ctx, CreateUserInput{Username: "clerk", Password: "secret2", FirstName: "Ben"})
	require.NoError(t, err)

	err = svc.Delete(ctx, admin.ID.Hex())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Admin accounts cannot be deleted", Reason(err))
	assert.Equal(t, *admin, repo.users[admin.ID], "admin record unchanged")

	require.NoError(t, svc.Delete(ctx, staff.ID.Hex()))
	assert.ErrorIs(t, svc.Delete(ctx, staff.ID.Hex()), ErrNotFound)
}

func TestUpdateAndChangePassword(t *testing.T) {
	svc, repo := newUsers()
	ctx := context.Background()
	u, err := svc.Create(ctx, CreateUserInput{Username: "chief", Password: "secret1", FirstName: "Ana"})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, u.ID.Hex(), UpdateUserInput{FirstName: "Anna", LastName: "Cruz"}))
	assert.Equal(t, "Anna Cruz", repo.users[u.ID].FullName())
	assert.ErrorIs(t, svc.Update(ctx, u.ID.Hex(), UpdateUserInput{}), ErrInvalidInput)

	require.NoError(t, svc.ChangePassword(ctx, u.ID.Hex(), "another1"))
	assert.True(t, auth.CheckPasswordHash("another1", repo.users[u.ID].Password))
	assert.ErrorIs(t, svc.ChangePassword(ctx, u.ID.Hex(), "x"), ErrInvalidInput)
}

func TestCreateUserStoreDown(t *testing.T) {
	svc, repo := newUsers()
	repo.fail = errStoreDown
	_, err := svc.Create(context.Background(), CreateUserInput{Username: "a", Password: "secret1", FirstName: "A"})
	assert.ErrorIs(t, err, ErrInternal)
}
