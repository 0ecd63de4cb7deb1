package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/TheRipper284/frontend/internal/domain/identity"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
	"github.com/TheRipper284/frontend/internal/infrastructure/marketapi"
	"github.com/TheRipper284/frontend/internal/infrastructure/navigation"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
	"github.com/TheRipper284/frontend/internal/infrastructure/storage"
)

// MockAuthAPI is a mock implementation of AuthAPI
type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Login(ctx context.Context, creds identity.Credentials) (identity.Session, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(identity.Session), args.Error(1)
}

func (m *MockAuthAPI) Register(ctx context.Context, reg identity.Registration) (identity.Session, error) {
	args := m.Called(ctx, reg)
	return args.Get(0).(identity.Session), args.Error(1)
}

func (m *MockAuthAPI) Me(ctx context.Context) (identity.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(identity.User), args.Error(1)
}

func (m *MockAuthAPI) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAuthAPI) UpdateProfile(ctx context.Context, in identity.ProfileUpdate) (identity.User, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(identity.User), args.Error(1)
}

func (m *MockAuthAPI) ChangePassword(ctx context.Context, in identity.PasswordChange) error {
	return m.Called(ctx, in).Error(0)
}

type fixture struct {
	svc      *Service
	api      *MockAuthAPI
	mem      *storage.MemoryStore
	sessions *SessionStore
	notifier *notify.Recorder
	nav      *navigation.Recorder
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		api:      &MockAuthAPI{},
		mem:      storage.NewMemoryStore(),
		notifier: &notify.Recorder{},
		nav:      &navigation.Recorder{},
	}
	f.sessions = NewSessionStore(f.mem)
	f.svc = NewService(Deps{
		API:       f.api,
		Sessions:  f.sessions,
		Notifier:  f.notifier,
		Navigator: f.nav,
		Now:       func() time.Time { return now },
	})
	return f
}

func (f *fixture) signIn(t *testing.T, u identity.User) {
	t.Helper()
	require.NoError(t, f.sessions.Save(context.Background(), identity.Session{Token: "tok", User: u}))
	f.api.On("Me", mock.Anything).Return(u, nil).Once()
	f.svc.CheckAuth(context.Background())
	require.True(t, f.svc.IsAuthenticated())
}

func (f *fixture) stored(t *testing.T, key string) bool {
	t.Helper()
	_, ok, err := f.mem.Get(context.Background(), key)
	require.NoError(t, err)
	return ok
}

var ana = identity.User{ID: "7", Name: "Ana", Email: "ana@example.com", Role: identity.RoleBuyer}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success persists the session", func(t *testing.T) {
		f := newFixture(t)
		creds := identity.Credentials{Email: "ana@example.com", Password: "secret1"}
		f.api.On("Login", mock.Anything, creds).Return(identity.Session{Token: "jwt", User: ana}, nil)

		ok := f.svc.Login(ctx, " ana@example.com ", "secret1")

		require.True(t, ok)
		assert.Equal(t, identity.StateAuthenticated, f.svc.State())
		assert.Equal(t, "Ana", f.svc.User().Name)
		token, err := f.sessions.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "jwt", token)
		assert.True(t, f.stored(t, storage.KeyUser))
		assert.Equal(t, []string{notify.MsgLoginOK}, f.notifier.Keys())
		assert.Equal(t, navigation.PathHome, f.nav.Last())
	})

	t.Run("server message wins over the fallback", func(t *testing.T) {
		f := newFixture(t)
		f.api.On("Login", mock.Anything, mock.Anything).
			Return(identity.Session{}, &apiclient.APIError{StatusCode: 400, Message: "Usuario inactivo"})

		ok := f.svc.Login(ctx, "ana@example.com", "secret1")

		assert.False(t, ok)
		assert.Equal(t, identity.StateAnonymous, f.svc.State())
		n, _ := f.notifier.Last()
		assert.Equal(t, notify.LevelError, n.Level)
		assert.Equal(t, "Usuario inactivo", n.Key)
		assert.False(t, f.stored(t, storage.KeyToken))
	})

	t.Run("fallback message on transport errors", func(t *testing.T) {
		f := newFixture(t)
		f.api.On("Login", mock.Anything, mock.Anything).Return(identity.Session{}, errors.New("connection refused"))

		assert.False(t, f.svc.Login(ctx, "ana@example.com", "secret1"))
		assert.Equal(t, []string{notify.MsgLoginFailed}, f.notifier.Keys())
	})

	t.Run("missing fields are rejected locally", func(t *testing.T) {
		f := newFixture(t)

		assert.False(t, f.svc.Login(ctx, "", "secret1"))
		assert.False(t, f.svc.Login(ctx, "not-an-email", "secret1"))

		assert.Equal(t, []string{notify.MsgFillRequired, notify.MsgInvalidEmail}, f.notifier.Keys())
		f.api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	valid := identity.Registration{Name: "Luis", Email: "luis@example.com", Password: "secret1", Role: identity.RoleSeller}

	tests := []struct {
		name   string
		mutate func(*identity.Registration)
		want   string
	}{
		{"short name", func(r *identity.Registration) { r.Name = " L " }, notify.MsgNameTooShort},
		{"short password", func(r *identity.Registration) { r.Password = "12345" }, notify.MsgPasswordTooShort},
		{"admin role", func(r *identity.Registration) { r.Role = identity.RoleAdmin }, notify.MsgRoleInvalid},
		{"missing email", func(r *identity.Registration) { r.Email = "" }, notify.MsgFillRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			reg := valid
			tt.mutate(&reg)

			assert.False(t, f.svc.Register(ctx, reg))
			assert.Equal(t, []string{tt.want}, f.notifier.Keys())
		})
	}

	t.Run("success signs in", func(t *testing.T) {
		f := newFixture(t)
		luis := identity.User{ID: "8", Name: "Luis", Role: identity.RoleSeller}
		f.api.On("Register", mock.Anything, valid).Return(identity.Session{Token: "jwt", User: luis}, nil)

		require.True(t, f.svc.Register(ctx, valid))
		assert.True(t, f.svc.HasRole(identity.RoleSeller))
		assert.Equal(t, []string{notify.MsgRegisterOK}, f.notifier.Keys())
	})
}

func TestCheckAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("no token stays anonymous", func(t *testing.T) {
		f := newFixture(t)
		assert.True(t, f.svc.Loading())

		f.svc.CheckAuth(ctx)

		assert.Equal(t, identity.StateAnonymous, f.svc.State())
		assert.False(t, f.svc.Loading())
		f.api.AssertNotCalled(t, "Me", mock.Anything)
	})

	t.Run("cached user shows before revalidation", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.sessions.Save(ctx, identity.Session{Token: "tok", User: ana}))
		fresh := ana
		fresh.Name = "Ana María"

		var states []identity.SessionState
		var names []string
		f.svc.Subscribe(func(s Snapshot) {
			states = append(states, s.State)
			if s.User != nil {
				names = append(names, s.User.Name)
			}
		})
		f.api.On("Me", mock.Anything).Return(fresh, nil)

		f.svc.CheckAuth(ctx)

		assert.Equal(t, "Ana", names[0])
		assert.Equal(t, "Ana María", f.svc.User().Name)
		assert.Equal(t, identity.StateAuthenticated, states[0])
		_, cached, err := f.sessions.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Ana María", cached.Name)
	})

	t.Run("rejected token clears the session", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.sessions.Save(ctx, identity.Session{Token: "tok", User: ana}))
		f.api.On("Me", mock.Anything).Return(identity.User{}, errors.New("boom"))

		f.svc.CheckAuth(ctx)

		assert.Equal(t, identity.StateAnonymous, f.svc.State())
		assert.Nil(t, f.svc.User())
		assert.False(t, f.stored(t, storage.KeyToken))
		assert.False(t, f.stored(t, storage.KeyUser))
	})

	t.Run("expired jwt is cleared without a request", func(t *testing.T) {
		f := newFixture(t)
		token := signedToken(t, now.Add(-time.Minute))
		require.NoError(t, f.sessions.Save(ctx, identity.Session{Token: token, User: ana}))

		f.svc.CheckAuth(ctx)

		assert.Equal(t, identity.StateAnonymous, f.svc.State())
		assert.False(t, f.stored(t, storage.KeyToken))
		f.api.AssertNotCalled(t, "Me", mock.Anything)
	})

	t.Run("corrupt cached user still revalidates", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.mem.Set(ctx, storage.KeyToken, signedToken(t, now.Add(time.Hour))))
		require.NoError(t, f.mem.Set(ctx, storage.KeyUser, "{"))
		f.api.On("Me", mock.Anything).Return(ana, nil)

		f.svc.CheckAuth(ctx)

		assert.True(t, f.svc.IsAuthenticated())
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, ana)

	f.svc.Logout(context.Background())

	assert.Equal(t, identity.StateAnonymous, f.svc.State())
	assert.Equal(t, 0, f.mem.Len())
	assert.Equal(t, navigation.PathHome, f.nav.Last())
	n, _ := f.notifier.Last()
	assert.Equal(t, notify.MsgLogoutOK, n.Key)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a session", func(t *testing.T) {
		f := newFixture(t)
		assert.False(t, f.svc.UpdateProfile(ctx, identity.ProfileUpdate{Name: "X"}))
		assert.Equal(t, []string{notify.MsgLoginRequired}, f.notifier.Keys())
	})

	t.Run("refreshes the cached user", func(t *testing.T) {
		f := newFixture(t)
		f.signIn(t, ana)
		in := identity.ProfileUpdate{City: "Monterrey"}
		updated := ana
		updated.City = "Monterrey"
		f.api.On("UpdateProfile", mock.Anything, in).Return(updated, nil)

		require.True(t, f.svc.UpdateProfile(ctx, in))

		assert.Equal(t, "Monterrey", f.svc.User().City)
		_, cached, err := f.sessions.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Monterrey", cached.City)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, ana)

	assert.False(t, f.svc.ChangePassword(ctx, identity.PasswordChange{
		CurrentPassword: "old", NewPassword: "newpass", ConfirmPassword: "other1",
	}))
	assert.False(t, f.svc.ChangePassword(ctx, identity.PasswordChange{
		CurrentPassword: "samepw", NewPassword: "samepw", ConfirmPassword: "samepw",
	}))

	in := identity.PasswordChange{CurrentPassword: "old", NewPassword: "newpass", ConfirmPassword: "newpass"}
	f.api.On("ChangePassword", mock.Anything, in).Return(nil)
	require.True(t, f.svc.ChangePassword(ctx, in))

	assert.Equal(t, []string{notify.MsgPasswordMismatch, notify.MsgPasswordUnchanged, notify.MsgPasswordOK}, f.notifier.Keys())
	assert.Equal(t, navigation.PathProfile, f.nav.Last())
}

func TestForgotPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.On("ForgotPassword", mock.Anything, "ana@example.com").Return(nil).Once()
	f.api.On("ForgotPassword", mock.Anything, "nadie@example.com").
		Return(&apiclient.UnsuccessfulError{Message: "Usuario no encontrado"}).Once()

	assert.False(t, f.svc.ForgotPassword(ctx, "ana"))
	assert.True(t, f.svc.ForgotPassword(ctx, "ana@example.com"))
	assert.False(t, f.svc.ForgotPassword(ctx, "nadie@example.com"))

	assert.Equal(t, []string{notify.MsgInvalidEmail, notify.MsgForgotOK, "Usuario no encontrado"}, f.notifier.Keys())
}

func TestRequireRole(t *testing.T) {
	f := newFixture(t)

	err := f.svc.RequireRole(identity.RoleAdmin)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Equal(t, navigation.PathLogin, f.nav.Last())

	f.signIn(t, ana)
	err = f.svc.RequireRole(identity.RoleAdmin)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Equal(t, navigation.PathHome, f.nav.Last())

	assert.NoError(t, f.svc.RequireRole(identity.RoleBuyer, identity.RoleSeller))
}

// A 401 on any request ends the session, and no authenticated request is
// sent afterwards until a new login.
func TestForcedLogoutOnUnauthorized(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/me":
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":7,"name":"Ana","role":"buyer"}}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Token inválido"}`))
		}
	}))
	defer srv.Close()

	mem := storage.NewMemoryStore()
	sessions := NewSessionStore(mem)
	require.NoError(t, sessions.Save(ctx, identity.Session{Token: "tok", User: ana}))

	nav := &navigation.Recorder{}
	var svc *Service
	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second}, sessions,
		apiclient.WithUnauthorizedHandler(func(ctx context.Context) { svc.HandleUnauthorized(ctx) }))
	require.NoError(t, err)
	api := marketapi.New(client)
	svc = NewService(Deps{API: api.Auth, Sessions: sessions, Navigator: nav})

	svc.CheckAuth(ctx)
	require.True(t, svc.IsAuthenticated())

	_, err = api.Orders.List(ctx)
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)

	assert.Equal(t, identity.StateAnonymous, svc.State())
	assert.Equal(t, navigation.PathLogin, nav.Last())
	_, ok, err := mem.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = mem.Get(ctx, storage.KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)

	before := hits.Load()
	_, err = api.Orders.List(ctx)
	assert.ErrorIs(t, err, apiclient.ErrNotAuthenticated)
	_, err = api.Cart.List(ctx)
	assert.ErrorIs(t, err, apiclient.ErrNotAuthenticated)
	assert.Equal(t, before, hits.Load(), "no request is sent without a session")
}
