package auth

import (
	"context"
	"testing"
	"time"

	"github.com/mdkarim/traveldesk/internal/domain"
	"github.com/mdkarim/traveldesk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, opts ...AuthServiceOption) *AuthService {
	t.Helper()
	store := storage.NewCollections(storage.NewMemoryKV(), "test", zap.NewNop())
	service := NewAuthService(store, 8*time.Hour, zap.NewNop(), opts...)
	require.NoError(t, service.EnsureDefaults(context.Background()))
	return service
}

func adminIdentity() domain.Identity {
	return domain.Identity{Username: "admin", Role: domain.RoleAdmin}
}

func managerIdentity() domain.Identity {
	return domain.Identity{Username: "manager1", Role: domain.RoleManager}
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	session, err := service.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, domain.RoleAdmin, session.Role)
	assert.True(t, session.ExpiresAt.After(session.CreatedAt))

	ident, err := service.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", ident.Username)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	_, err := service.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, "nobody", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, service.SetUserActive(ctx, adminIdentity(), "manager1", false))
	_, err = service.Login(ctx, "manager1", "manager123")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "inactive account reads like a bad password")
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	session, err := service.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	require.NoError(t, service.Logout(ctx, session.Token))

	_, err = service.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	service := newTestService(t, WithClock(func() time.Time { return current }))

	session, err := service.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	current = current.Add(9 * time.Hour)
	_, err = service.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHasPermission(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	session, err := service.Login(ctx, "manager1", "manager123")
	require.NoError(t, err)

	assert.True(t, service.HasPermission(ctx, session.Token, domain.PermCreateBooking))
	assert.False(t, service.HasPermission(ctx, session.Token, domain.PermManageUsers))
	assert.False(t, service.HasPermission(ctx, "bogus-token", domain.PermCreateBooking))
}

func TestUserManagementRequiresPermission(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	manager := managerIdentity()

	_, err := service.ListUsers(ctx, manager)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = service.CreateUser(ctx, manager, CreateUserInput{Username: "x", Password: "x", Name: "x", Role: domain.RoleManager})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	assert.ErrorIs(t, service.SetUserActive(ctx, manager, "admin", false), ErrPermissionDenied)
	assert.ErrorIs(t, service.DeleteUser(ctx, manager, "admin"), ErrPermissionDenied)
	assert.ErrorIs(t, service.ResetPassword(ctx, manager, "admin", "pw"), ErrPermissionDenied)
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	admin := adminIdentity()

	user, err := service.CreateUser(ctx, admin, CreateUserInput{
		Username: "manager2",
		Password: "secret",
		Name:     "Manager Two",
		Role:     domain.RoleManager,
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	_, err = service.Login(ctx, "manager2", "secret")
	require.NoError(t, err)

	_, err = service.CreateUser(ctx, admin, CreateUserInput{Username: "manager2", Password: "x", Name: "x", Role: domain.RoleManager})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = service.CreateUser(ctx, admin, CreateUserInput{Username: "odd", Password: "x", Name: "x", Role: domain.Role("owner")})
	assert.Error(t, err)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)
	admin := adminIdentity()

	assert.Error(t, service.DeleteUser(ctx, admin, "admin"), "self delete is blocked")
	assert.ErrorIs(t, service.DeleteUser(ctx, admin, "ghost"), ErrUserNotFound)

	require.NoError(t, service.DeleteUser(ctx, admin, "manager1"))
	_, err := service.Login(ctx, "manager1", "manager123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	require.NoError(t, service.ResetPassword(ctx, adminIdentity(), "manager1", "newpass"))

	_, err := service.Login(ctx, "manager1", "manager123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = service.Login(ctx, "manager1", "newpass")
	assert.NoError(t, err)
}

func TestSweepExpiredSessions(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	service := newTestService(t, WithClock(func() time.Time { return current }))

	stale, err := service.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	current = current.Add(7 * time.Hour)
	fresh, err := service.Login(ctx, "manager1", "manager123")
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)
	removed, err := service.SweepExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = service.Authenticate(ctx, stale.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = service.Authenticate(ctx, fresh.Token)
	assert.NoError(t, err)
}
