// Package identity implements the auth context: the signed-in user, the
// session lifecycle and the account mutations, backed by the session store.
package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TheRipper284/frontend/internal/domain/identity"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
	"github.com/TheRipper284/frontend/internal/infrastructure/navigation"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
)

// AuthAPI is the remote side of authentication.
type AuthAPI interface {
	Login(ctx context.Context, creds identity.Credentials) (identity.Session, error)
	Register(ctx context.Context, reg identity.Registration) (identity.Session, error)
	Me(ctx context.Context) (identity.User, error)
	ForgotPassword(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, in identity.ProfileUpdate) (identity.User, error)
	ChangePassword(ctx context.Context, in identity.PasswordChange) error
}

// Deps are the collaborators of a Service. API and Sessions are required.
type Deps struct {
	API       AuthAPI
	Sessions  *SessionStore
	Notifier  notify.Notifier
	Navigator navigation.Navigator
	Logger    *zap.Logger
	Now       func() time.Time
}

// Snapshot is the observable auth state.
type Snapshot struct {
	User    *identity.User
	State   identity.SessionState
	Loading bool
}

// Service is the auth context. Mutations report success as a bool and
// surface failures through the notifier; no error escapes to callers.
type Service struct {
	api      AuthAPI
	sessions *SessionStore
	notifier notify.Notifier
	nav      navigation.Navigator
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.RWMutex
	user    *identity.User
	state   identity.SessionState
	loading bool

	subMu     sync.Mutex
	listeners map[uint64]func(Snapshot)
	nextSub   uint64
}

// NewService creates a signed-out service. Loading stays true until the
// first CheckAuth finishes.
func NewService(deps Deps) *Service {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Navigator == nil {
		deps.Navigator = navigation.Func(func(string) {})
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		api:       deps.API,
		sessions:  deps.Sessions,
		notifier:  deps.Notifier,
		nav:       deps.Navigator,
		logger:    deps.Logger.Named("auth"),
		now:       deps.Now,
		state:     identity.StateAnonymous,
		loading:   true,
		listeners: make(map[uint64]func(Snapshot)),
	}
}

// CheckAuth restores the session at startup. The cached user is shown
// immediately, then revalidated against /auth/me; any failure clears the
// session.
func (s *Service) CheckAuth(ctx context.Context) {
	defer s.update(func() { s.loading = false })

	token, cached, err := s.sessions.Load(ctx)
	switch {
	case errors.Is(err, ErrCorruptUser):
		s.logger.Warn("Ignoring corrupt cached user", zap.Error(err))
	case err != nil:
		s.logger.Warn("Failed to read session", zap.Error(err))
		s.update(func() { s.user, s.state = nil, identity.StateAnonymous })
		return
	}
	if token == "" {
		s.update(func() { s.user, s.state = nil, identity.StateAnonymous })
		return
	}

	if exp, ok := ExpiresAt(token); ok && !s.now().Before(exp) {
		s.logger.Info("Session token expired", zap.Time("exp", exp))
		s.clear(ctx)
		return
	}

	s.update(func() {
		if cached != nil {
			s.user, s.state = cached, identity.StateAuthenticated
		} else {
			s.state = identity.StateAuthenticating
		}
	})

	me, err := s.api.Me(ctx)
	if err != nil {
		s.logger.Warn("Session rejected", zap.Error(err))
		s.clear(ctx)
		return
	}
	if err := s.sessions.SaveUser(ctx, me); err != nil {
		s.logger.Error("Failed to cache user", zap.Error(err))
	}
	s.update(func() { s.user, s.state = &me, identity.StateAuthenticated })
}

// Login signs in with email and password
func (s *Service) Login(ctx context.Context, email, password string) bool {
	creds := identity.Credentials{Email: strings.TrimSpace(email), Password: password}
	if msg := check(creds); msg != "" {
		s.notifier.Error(msg)
		return false
	}
	return s.authenticate(ctx, notify.MsgLoginOK, notify.MsgLoginFailed, func() (identity.Session, error) {
		return s.api.Login(ctx, creds)
	})
}

// Register creates an account and signs in with it
func (s *Service) Register(ctx context.Context, reg identity.Registration) bool {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	if msg := check(reg); msg != "" {
		s.notifier.Error(msg)
		return false
	}
	return s.authenticate(ctx, notify.MsgRegisterOK, notify.MsgRegisterFailed, func() (identity.Session, error) {
		return s.api.Register(ctx, reg)
	})
}

func (s *Service) authenticate(ctx context.Context, okMsg, failMsg string, call func() (identity.Session, error)) bool {
	prev := s.State()
	s.update(func() { s.state = identity.StateAuthenticating })

	sess, err := call()
	if err != nil {
		s.logger.Info("Authentication failed", zap.Error(err))
		s.update(func() { s.state = prev })
		s.notifier.Error(apiclient.Message(err, failMsg))
		return false
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		s.logger.Error("Failed to persist session", zap.Error(err))
	}
	user := sess.User
	s.update(func() { s.user, s.state = &user, identity.StateAuthenticated })
	s.notifier.Success(okMsg)
	s.nav.Navigate(navigation.PathHome)
	return true
}

// Logout ends the session locally
func (s *Service) Logout(ctx context.Context) {
	s.clear(ctx)
	s.nav.Navigate(navigation.PathHome)
	s.notifier.Success(notify.MsgLogoutOK)
}

// HandleUnauthorized is the API client's 401 hook: it drops the session and
// redirects to the login page, whatever request triggered it.
func (s *Service) HandleUnauthorized(ctx context.Context) {
	wasSignedIn := s.IsAuthenticated()
	s.logger.Info("Session invalidated by server")
	s.clear(ctx)
	if wasSignedIn {
		s.notifier.Error(notify.MsgSessionExpired)
	}
	s.nav.Navigate(navigation.PathLogin)
}

// UpdateProfile saves profile fields and refreshes the cached user
func (s *Service) UpdateProfile(ctx context.Context, in identity.ProfileUpdate) bool {
	if !s.IsAuthenticated() {
		s.notifier.Error(notify.MsgLoginRequired)
		return false
	}
	if msg := check(in); msg != "" {
		s.notifier.Error(msg)
		return false
	}

	u, err := s.api.UpdateProfile(ctx, in)
	if err != nil {
		s.notifier.Error(apiclient.Message(err, notify.MsgProfileFailed))
		return false
	}
	if err := s.sessions.SaveUser(ctx, u); err != nil {
		s.logger.Error("Failed to cache user", zap.Error(err))
	}
	s.update(func() { s.user = &u })
	s.notifier.Success(notify.MsgProfileOK)
	return true
}

// ChangePassword replaces the account password
func (s *Service) ChangePassword(ctx context.Context, in identity.PasswordChange) bool {
	if !s.IsAuthenticated() {
		s.notifier.Error(notify.MsgLoginRequired)
		return false
	}
	if msg := check(in); msg != "" {
		s.notifier.Error(msg)
		return false
	}

	if err := s.api.ChangePassword(ctx, in); err != nil {
		s.notifier.Error(apiclient.Message(err, notify.MsgPasswordFailed))
		return false
	}
	s.notifier.Success(notify.MsgPasswordOK)
	s.nav.Navigate(navigation.PathProfile)
	return true
}

// ForgotPassword requests a reset email
func (s *Service) ForgotPassword(ctx context.Context, email string) bool {
	email = strings.TrimSpace(email)
	if err := apiclient.Validator().Var(email, "required,email"); err != nil {
		s.notifier.Error(notify.MsgInvalidEmail)
		return false
	}
	if err := s.api.ForgotPassword(ctx, email); err != nil {
		s.notifier.Error(apiclient.Message(err, notify.MsgForgotFailed))
		return false
	}
	s.notifier.Success(notify.MsgForgotOK)
	return true
}

// User returns a copy of the signed-in user, or nil
func (s *Service) User() *identity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// State returns the session state
func (s *Service) State() identity.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether a user is signed in
func (s *Service) IsAuthenticated() bool {
	return s.State() == identity.StateAuthenticated
}

// Loading reports whether the startup check is still running
func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// HasRole reports whether the signed-in user holds one of roles
func (s *Service) HasRole(roles ...identity.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == identity.StateAuthenticated && s.user.HasRole(roles...)
}

// RequireRole gates a role-specific view. Anonymous callers are sent to the
// login page; signed-in callers without the role are sent home.
func (s *Service) RequireRole(roles ...identity.Role) error {
	if !s.IsAuthenticated() {
		s.notifier.Error(notify.MsgLoginRequired)
		s.nav.Navigate(navigation.PathLogin)
		return shared.ErrForbidden
	}
	if !s.HasRole(roles...) {
		s.notifier.Error(notify.MsgAccessDenied)
		s.nav.Navigate(navigation.PathHome)
		return shared.ErrForbidden
	}
	return nil
}

// Snapshot returns the current auth state
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to run after every state change
func (s *Service) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.listeners, id)
		s.subMu.Unlock()
	}
}

func (s *Service) clear(ctx context.Context) {
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear session", zap.Error(err))
	}
	s.update(func() { s.user, s.state = nil, identity.StateAnonymous })
}

// update applies fn under the lock and notifies subscribers.
func (s *Service) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, l := range s.listeners {
		fns = append(fns, l)
	}
	s.subMu.Unlock()

	for _, l := range fns {
		l(snap)
	}
}

func (s *Service) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state, Loading: s.loading}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}
