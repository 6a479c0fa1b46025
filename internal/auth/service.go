package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/uleam/vehicle-gate/internal/rbac"
	"github.com/uleam/vehicle-gate/internal/storage"
)

// DefaultNotificationDuration is how long a notification stays visible.
const DefaultNotificationDuration = 3 * time.Second

// LoginRecorder receives the outcome of every login attempt.
type LoginRecorder interface {
	RecordLogin(success bool)
}

// Service holds the signed-in state of one browser profile.
type Service struct {
	store  storage.Store
	repo   Repository
	logger *slog.Logger

	now                 func() time.Time
	bcryptCost          int
	notificationTimeout time.Duration
	recorder            LoginRecorder

	mu      sync.RWMutex
	current *Session

	notifier *notifier
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBcryptCost sets the cost used when hashing seed secrets.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// WithNotificationDuration sets the default visibility of notifications.
func WithNotificationDuration(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notificationTimeout = d
		}
	}
}

// WithLoginRecorder reports login outcomes, typically to metrics.
func WithLoginRecorder(rec LoginRecorder) Option {
	return func(s *Service) { s.recorder = rec }
}

// NewService constructs a Service over a profile store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:               store,
		repo:                NewRepository(store),
		logger:              slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:                 time.Now,
		bcryptCost:          bcrypt.DefaultCost,
		notificationTimeout: DefaultNotificationDuration,
		notifier:            newNotifier(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login signs in the first active user whose login name or email equals
// identifier and whose secret matches. It reports false, with state left
// unchanged, when no such user exists; the reason is never disclosed. The
// error is reserved for storage failures.
func (s *Service) Login(ctx context.Context, identifier, secret string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	idx := -1
	for i, u := range users {
		if u.Username != identifier && u.Email != identifier {
			continue
		}
		if !u.IsActive() {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.SecretHash), []byte(secret)) != nil {
			continue
		}
		idx = i
		break
	}
	if idx < 0 {
		s.record(false)
		return false, nil
	}

	now := s.now()
	user := users[idx]
	user.LastLogin = &now
	users[idx] = user
	if err := s.repo.SaveUsers(ctx, users); err != nil {
		return false, err
	}

	sess := &Session{
		UserID:      user.ID,
		Username:    user.Name,
		Role:        user.Role,
		Permissions: rbac.PermissionsFor(user.Role),
		LastLogin:   now,
		Timestamp:   now.UnixMilli(),
	}
	if err := s.repo.SaveSession(ctx, sess); err != nil {
		return false, err
	}
	s.current = sess
	s.record(true)
	s.logger.Info("login", slog.Int64("user_id", user.ID), slog.String("role", user.Role.String()))
	return true, nil
}

// Logout drops the persisted and in-memory session. Calling it without a
// session is a no-op.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.DeleteSession(ctx); err != nil {
		return err
	}
	s.current = nil
	return nil
}

// CheckSession restores the persisted session into memory. When storage holds
// no usable session it reports false and leaves the in-memory session as is.
func (s *Service) CheckSession(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.repo.LoadSession(ctx)
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, nil
	}
	s.current = sess
	return true, nil
}

// HasPermission reports whether the current session grants token.
func (s *Service) HasPermission(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return false
	}
	return rbac.Granted(s.current.Permissions, token)
}

// IsAuthenticated reports whether a session is loaded.
func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// CurrentSession returns a copy of the loaded session, or nil.
func (s *Service) CurrentSession() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// Role returns the role of the loaded session, or "" without one.
func (s *Service) Role() rbac.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Role
}

// Permissions returns the session's permission snapshot, empty without one.
func (s *Service) Permissions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return []string{}
	}
	return append([]string{}, s.current.Permissions...)
}

// ShowNotification replaces the current notification and hides it after d.
// A non-positive d uses the configured default.
func (s *Service) ShowNotification(message string, severity Severity, d time.Duration) {
	if d <= 0 {
		d = s.notificationTimeout
	}
	if severity == "" {
		severity = SeveritySuccess
	}
	s.notifier.show(Notification{Visible: true, Message: message, Severity: severity}, d)
}

// Notification returns the current notification.
func (s *Service) Notification() Notification {
	return s.notifier.get()
}

// Store exposes the profile store backing this service.
func (s *Service) Store() storage.Store {
	return s.store
}

// Close stops the pending notification timer.
func (s *Service) Close() {
	s.notifier.stop()
}

func (s *Service) record(success bool) {
	if s.recorder != nil {
		s.recorder.RecordLogin(success)
	}
}
