package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvehq/complaints-backend/internal/auth"
	"github.com/resolvehq/complaints-backend/internal/models"
)

type fakeStaff struct {
	users map[string]models.StaffUser
}

func newFakeStaff() *fakeStaff {
	return &fakeStaff{users: map[string]models.StaffUser{}}
}

func (f *fakeStaff) Create(_ context.Context, u models.StaffUser) (models.StaffUser, error) {
	if u.ID == "" {
		u.ID = "id-" + u.Username
	}
	u.CreatedAt = time.Now()
	f.users[u.Username] = u
	return u, nil
}

func (f *fakeStaff) GetByUsername(_ context.Context, username string) (models.StaffUser, error) {
	u, ok := f.users[username]
	if !ok {
		return models.StaffUser{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeStaff) Count(context.Context) (int, error) { return len(f.users), nil }

func newStaffService(t *testing.T) (*StaffService, *fakeStaff) {
	t.Helper()
	store := newFakeStaff()
	tm := auth.NewTokenManager("access-secret", "refresh-secret", "test", time.Minute, time.Hour)
	return NewStaffService(store, tm, nopLogger()), store
}

func TestStaffLogin(t *testing.T) {
	svc, _ := newStaffService(t)
	_, err := svc.Create(context.Background(), "agent_jo", "s3cretpass", models.RoleAgent, "Jo")
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), "agent_jo", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, "agent_jo", res.User.Username)
	assert.Equal(t, models.RoleAgent, res.User.Role)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.True(t, res.ExpiresAt.After(time.Now()))
}

func TestStaffLoginWrongPassword(t *testing.T) {
	svc, _ := newStaffService(t)
	_, err := svc.Create(context.Background(), "agent_jo", "s3cretpass", models.RoleAgent, "Jo")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "agent_jo", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStaffLoginUnknownUser(t *testing.T) {
	svc, _ := newStaffService(t)
	_, err := svc.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStaffRefresh(t *testing.T) {
	svc, _ := newStaffService(t)
	_, err := svc.Create(context.Background(), "admin_sam", "s3cretpass", models.RoleAdmin, "Sam")
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), "admin_sam", "s3cretpass")
	require.NoError(t, err)

	renewed, err := svc.Refresh(context.Background(), res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "admin_sam", renewed.User.Username)
	assert.NotEmpty(t, renewed.AccessToken)

	// access tokens must not pass as refresh tokens
	_, err = svc.Refresh(context.Background(), res.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStaffCreateValidation(t *testing.T) {
	svc, _ := newStaffService(t)

	_, err := svc.Create(context.Background(), "ab", "longenough", models.RoleViewer, "")
	assert.Error(t, err, "short username")

	_, err = svc.Create(context.Background(), "valid_user", "short", models.RoleViewer, "")
	assert.Error(t, err, "short password")

	_, err = svc.Create(context.Background(), "valid_user", "longenough", "superuser", "")
	assert.Error(t, err, "unknown role")
}

func TestSeedAdminOnlyOnEmptyTable(t *testing.T) {
	svc, store := newStaffService(t)

	require.NoError(t, svc.SeedAdmin(context.Background(), "admin", "bootpass1"))
	require.Len(t, store.users, 1)
	assert.Equal(t, models.RoleAdmin, store.users["admin"].Role)

	res, err := svc.Login(context.Background(), "admin", "bootpass1")
	require.NoError(t, err)
	assert.Equal(t, "admin", res.User.Username)

	// second seed is a no-op
	require.NoError(t, svc.SeedAdmin(context.Background(), "admin2", "bootpass2"))
	assert.Len(t, store.users, 1)

	// blank credentials skip seeding entirely
	empty, _ := newStaffService(t)
	require.NoError(t, empty.SeedAdmin(context.Background(), "", ""))
}
