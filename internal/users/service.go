// Package users implements dashboard authentication and user management.
// Passwords are stored as bcrypt hashes; sessions are opaque random tokens
// kept in memory and invalidated on restart.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vieirasantos/meli-seller-hub/internal/store"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

const (
	// MasterUsername is the seeded operator account. It cannot be deleted
	// and only it can modify itself.
	MasterUsername = "master"

	defaultSessionTTL = 12 * time.Hour
	minPasswordLength = 8
)

// Sentinel errors for the API layer to map onto HTTP statuses.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalid     = errors.New("session invalid or expired")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrMasterProtected    = errors.New("master user is protected")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", minPasswordLength)
)

type session struct {
	userID    string
	expiresAt time.Time
}

// Service provides login, session validation, and permission-gated user CRUD.
type Service struct {
	store      store.Store
	sessionTTL time.Duration
	nowFunc    func() time.Time

	mu       sync.Mutex
	sessions map[string]session
}

// Option configures the Service.
type Option func(*Service)

// WithSessionTTL overrides the default session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.sessionTTL = ttl
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(s *Service) {
		s.nowFunc = f
	}
}

// New creates a user service backed by st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:      st,
		sessionTTL: defaultSessionTTL,
		nowFunc:    time.Now,
		sessions:   make(map[string]session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureMaster creates the master user if it does not exist yet. Called at
// startup; an existing master is left untouched so a changed config password
// never silently rotates credentials.
func (s *Service) EnsureMaster(ctx context.Context, password string) error {
	_, err := s.store.GetUserByUsername(ctx, MasterUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("looking up master user: %w", err)
	}

	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing master password: %w", err)
	}

	master := &domain.User{
		Username:     MasterUsername,
		PasswordHash: string(hash),
		Role:         domain.RoleMaster,
		Permissions:  domain.AllPermissions(),
	}
	if err := s.store.CreateUser(ctx, master); err != nil {
		return fmt.Errorf("creating master user: %w", err)
	}
	return nil
}

// Login verifies the credentials and returns a session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = session{
		userID:    u.ID,
		expiresAt: s.nowFunc().Add(s.sessionTTL),
	}
	s.mu.Unlock()

	return token, u, nil
}

// Logout invalidates a session token. Unknown tokens are a no-op.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Authenticate resolves a session token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	if ok && s.nowFunc().After(sess.expiresAt) {
		delete(s.sessions, token)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrSessionInvalid
	}

	u, err := s.store.GetUser(ctx, sess.userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("looking up session user: %w", err)
	}
	return u, nil
}

// Create adds a new dashboard user on behalf of actor. Only users holding
// the manage-users permission may create; the master role cannot be granted.
func (s *Service) Create(
	ctx context.Context,
	actor *domain.User,
	username, password string,
	role domain.Role,
	perms domain.Permissions,
) (*domain.User, error) {
	if !actor.Permissions.ManageUsers {
		return nil, ErrPermissionDenied
	}
	if role == domain.RoleMaster {
		return nil, ErrMasterProtected
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Permissions:  perms,
		CreatedBy:    actor.Username,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// Update changes a user's role, permissions, and optionally password.
// The master user can only be modified by itself, and its role sticks.
func (s *Service) Update(
	ctx context.Context,
	actor *domain.User,
	id string,
	role domain.Role,
	perms domain.Permissions,
	newPassword string,
) (*domain.User, error) {
	if !actor.Permissions.ManageUsers && actor.ID != id {
		return nil, ErrPermissionDenied
	}

	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Role == domain.RoleMaster {
		if actor.Role != domain.RoleMaster {
			return nil, ErrMasterProtected
		}
		role = domain.RoleMaster
		perms = domain.AllPermissions()
	} else if role == domain.RoleMaster {
		return nil, ErrMasterProtected
	}

	u.Role = role
	u.Permissions = perms

	if newPassword != "" {
		if len(newPassword) < minPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return u, nil
}

// Delete removes a user. The master user cannot be deleted by anyone.
func (s *Service) Delete(ctx context.Context, actor *domain.User, id string) error {
	if !actor.Permissions.ManageUsers {
		return ErrPermissionDenied
	}

	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == domain.RoleMaster {
		return ErrMasterProtected
	}

	if err := s.store.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	// Drop any live sessions of the deleted user.
	s.mu.Lock()
	for token, sess := range s.sessions {
		if sess.userID == id {
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()

	return nil
}

// List returns all dashboard users.
func (s *Service) List(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if !actor.Permissions.ManageUsers {
		return nil, ErrPermissionDenied
	}
	return s.store.ListUsers(ctx)
}

// DefaultPermissions returns the grant set a role starts with.
func DefaultPermissions(role domain.Role) domain.Permissions {
	switch role {
	case domain.RoleMaster, domain.RoleAdmin:
		return domain.AllPermissions()
	default:
		return domain.Permissions{
			ViewDashboard: true,
			ViewAnalytics: true,
		}
	}
}
