package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mdkarim/traveldesk/internal/domain"
	"go.uber.org/zap"
)

// ErrInvalidCredentials covers unknown user, wrong password and inactive
// account alike, so a caller cannot probe which usernames exist.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrUserExists         = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthUseCase interface {
	Login(ctx context.Context, username, password string) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
	HasPermission(ctx context.Context, token string, perm domain.Permission) bool
	ListUsers(ctx context.Context, ident domain.Identity) ([]domain.User, error)
	CreateUser(ctx context.Context, ident domain.Identity, input CreateUserInput) (*domain.User, error)
	SetUserActive(ctx context.Context, ident domain.Identity, username string, active bool) error
	DeleteUser(ctx context.Context, ident domain.Identity, username string) error
	ResetPassword(ctx context.Context, ident domain.Identity, username, password string) error
	SweepExpiredSessions(ctx context.Context) (int, error)
}

// Store is the slice of the persistence layer the auth service needs.
type Store interface {
	Users(ctx context.Context) ([]domain.User, error)
	SaveUsers(ctx context.Context, users []domain.User) error
	Passwords(ctx context.Context) (map[string]string, error)
	SavePasswords(ctx context.Context, passwords map[string]string) error
	Session(ctx context.Context, token string) (*domain.Session, error)
	SaveSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, token string) error
	SessionKeys(ctx context.Context) ([]string, error)
	SessionByKey(ctx context.Context, key string) (*domain.Session, error)
	DeleteSessionKey(ctx context.Context, key string) error
}

type AuthService struct {
	store      Store
	sessionTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

type AuthServiceOption func(*AuthService)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		s.now = now
	}
}

func NewAuthService(store Store, sessionTTL time.Duration, logger *zap.Logger, opts ...AuthServiceOption) *AuthService {
	service := &AuthService{
		store:      store,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type CreateUserInput struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

// EnsureDefaults seeds the roster with the stock admin and manager
// accounts when the user collection is empty, so a fresh install can log
// in at all.
func (s *AuthService) EnsureDefaults(ctx context.Context) error {
	users, err := s.store.Users(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	now := s.now()
	users = []domain.User{
		{ID: uuid.NewString(), Username: "admin", Role: domain.RoleAdmin, Name: "System Admin", Email: "admin@travelagency.com", CreatedAt: now, IsActive: true},
		{ID: uuid.NewString(), Username: "manager1", Role: domain.RoleManager, Name: "Manager One", Email: "manager1@travelagency.com", CreatedAt: now, IsActive: true},
	}
	if err := s.store.SaveUsers(ctx, users); err != nil {
		return err
	}

	passwords, err := s.store.Passwords(ctx)
	if err != nil {
		return err
	}
	passwords["admin"] = "admin123"
	passwords["manager1"] = "manager123"
	return s.store.SavePasswords(ctx, passwords)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	passwords, err := s.store.Passwords(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, u := range users {
		if u.Username == username {
			idx = i
			break
		}
	}
	if idx < 0 || !users[idx].IsActive || passwords[username] != password {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	users[idx].LastLogin = &now
	if err := s.store.SaveUsers(ctx, users); err != nil {
		return nil, err
	}

	session := &domain.Session{
		Token:     uuid.NewString(),
		Username:  users[idx].Username,
		Role:      users[idx].Role,
		Name:      users[idx].Name,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.logger.Info("user logged in", zap.String("username", username), zap.String("role", string(session.Role)))
	return session, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, ErrSessionNotFound
	}
	session, err := s.store.Session(ctx, token)
	if err != nil {
		return domain.Identity{}, err
	}
	if session == nil {
		return domain.Identity{}, ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		_ = s.store.DeleteSession(ctx, token)
		return domain.Identity{}, ErrSessionNotFound
	}
	return domain.Identity{Username: session.Username, Role: session.Role}, nil
}

// HasPermission reports whether the session behind token may perform perm.
// Any failure to resolve the session reads as false.
func (s *AuthService) HasPermission(ctx context.Context, token string, perm domain.Permission) bool {
	ident, err := s.Authenticate(ctx, token)
	if err != nil {
		return false
	}
	return ident.Has(perm)
}

func (s *AuthService) ListUsers(ctx context.Context, ident domain.Identity) ([]domain.User, error) {
	if !ident.Has(domain.PermManageUsers) {
		return nil, ErrPermissionDenied
	}
	return s.store.Users(ctx)
}

func (s *AuthService) CreateUser(ctx context.Context, ident domain.Identity, input CreateUserInput) (*domain.User, error) {
	if !ident.Has(domain.PermManageUsers) {
		return nil, ErrPermissionDenied
	}
	if input.Username == "" || input.Password == "" || input.Name == "" {
		return nil, errors.New("username, password and name are required")
	}
	if input.Role != domain.RoleAdmin && input.Role != domain.RoleManager {
		return nil, fmt.Errorf("unknown role %q", input.Role)
	}

	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == input.Username {
			return nil, ErrUserExists
		}
	}

	user := domain.User{
		ID:        uuid.NewString(),
		Username:  input.Username,
		Role:      input.Role,
		Name:      input.Name,
		Email:     input.Email,
		CreatedAt: s.now(),
		IsActive:  true,
	}
	users = append(users, user)
	if err := s.store.SaveUsers(ctx, users); err != nil {
		return nil, err
	}

	passwords, err := s.store.Passwords(ctx)
	if err != nil {
		return nil, err
	}
	passwords[input.Username] = input.Password
	if err := s.store.SavePasswords(ctx, passwords); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return &user, nil
}

func (s *AuthService) SetUserActive(ctx context.Context, ident domain.Identity, username string, active bool) error {
	if !ident.Has(domain.PermManageUsers) {
		return ErrPermissionDenied
	}
	users, err := s.store.Users(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].Username == username {
			users[i].IsActive = active
			return s.store.SaveUsers(ctx, users)
		}
	}
	return ErrUserNotFound
}

func (s *AuthService) DeleteUser(ctx context.Context, ident domain.Identity, username string) error {
	if !ident.Has(domain.PermManageUsers) {
		return ErrPermissionDenied
	}
	if username == ident.Username {
		return errors.New("cannot delete your own account")
	}

	users, err := s.store.Users(ctx)
	if err != nil {
		return err
	}
	kept := users[:0]
	found := false
	for _, u := range users {
		if u.Username == username {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	if !found {
		return ErrUserNotFound
	}
	if err := s.store.SaveUsers(ctx, kept); err != nil {
		return err
	}

	passwords, err := s.store.Passwords(ctx)
	if err != nil {
		return err
	}
	delete(passwords, username)
	return s.store.SavePasswords(ctx, passwords)
}

func (s *AuthService) ResetPassword(ctx context.Context, ident domain.Identity, username, password string) error {
	if !ident.Has(domain.PermManageUsers) {
		return ErrPermissionDenied
	}
	if password == "" {
		return errors.New("password is required")
	}
	passwords, err := s.store.Passwords(ctx)
	if err != nil {
		return err
	}
	passwords[username] = password
	return s.store.SavePasswords(ctx, passwords)
}

// SweepExpiredSessions drops sessions past their expiry. Run periodically
// by the worker.
func (s *AuthService) SweepExpiredSessions(ctx context.Context) (int, error) {
	keys, err := s.store.SessionKeys(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	now := s.now()
	for _, key := range keys {
		session, err := s.store.SessionByKey(ctx, key)
		if err != nil {
			return removed, err
		}
		if session == nil || session.Expired(now) {
			if err := s.store.DeleteSessionKey(ctx, key); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

var _ AuthUseCase = (*AuthService)(nil)
