package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TheRipper284/frontend/internal/domain/identity"
	"github.com/TheRipper284/frontend/internal/infrastructure/storage"
)

// ErrCorruptUser is returned by Load when the cached user cannot be parsed.
// The token is still returned.
var ErrCorruptUser = errors.New("session: cached user is corrupt")

// SessionStore keeps the bearer token and the cached user under the "token"
// and "user" keys of local storage. It is the API client's token source.
type SessionStore struct {
	store storage.Store
}

// NewSessionStore creates a session store over store
func NewSessionStore(store storage.Store) *SessionStore {
	return &SessionStore{store: store}
}

// Token returns the stored token, or "" when signed out
func (s *SessionStore) Token(ctx context.Context) (string, error) {
	token, _, err := s.store.Get(ctx, storage.KeyToken)
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return token, nil
}

// Load returns the token and the cached user. user is nil when none is cached.
func (s *SessionStore) Load(ctx context.Context) (string, *identity.User, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return "", nil, err
	}
	raw, ok, err := s.store.Get(ctx, storage.KeyUser)
	if err != nil {
		return token, nil, fmt.Errorf("reading user: %w", err)
	}
	if !ok || raw == "" {
		return token, nil, nil
	}
	var u identity.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return token, nil, fmt.Errorf("%w: %v", ErrCorruptUser, err)
	}
	return token, &u, nil
}

// Save stores a new session
func (s *SessionStore) Save(ctx context.Context, sess identity.Session) error {
	if err := s.store.Set(ctx, storage.KeyToken, sess.Token); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return s.SaveUser(ctx, sess.User)
}

// SaveUser replaces the cached user
func (s *SessionStore) SaveUser(ctx context.Context, u identity.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("writing user: %w", err)
	}
	return nil
}

// Clear removes the token and the cached user. Both removals are attempted.
func (s *SessionStore) Clear(ctx context.Context) error {
	return errors.Join(
		s.store.Remove(ctx, storage.KeyToken),
		s.store.Remove(ctx, storage.KeyUser),
	)
}

// ExpiresAt reads the exp claim of a JWT without verifying its signature.
// ok is false for opaque tokens and tokens without exp.
func ExpiresAt(token string) (exp time.Time, ok bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
