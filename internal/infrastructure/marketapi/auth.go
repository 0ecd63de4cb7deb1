package marketapi

import (
	"context"
	"net/http"

	"github.com/TheRipper284/frontend/internal/domain/identity"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
)

// AuthAPI covers /auth and the self-service /users routes.
type AuthAPI struct{ base }

// Login exchanges credentials for a session
func (a *AuthAPI) Login(ctx context.Context, creds identity.Credentials) (identity.Session, error) {
	resp, err := a.public(ctx, http.MethodPost, "/auth/login", nil, creds)
	if err != nil {
		return identity.Session{}, err
	}
	return decodeSession(resp)
}

// Register creates an account and returns its session
func (a *AuthAPI) Register(ctx context.Context, reg identity.Registration) (identity.Session, error) {
	resp, err := a.public(ctx, http.MethodPost, "/auth/register", nil, reg)
	if err != nil {
		return identity.Session{}, err
	}
	return decodeSession(resp)
}

// Me returns the user the current token belongs to
func (a *AuthAPI) Me(ctx context.Context) (identity.User, error) {
	resp, err := a.get(ctx, "/auth/me", nil)
	if err != nil {
		return identity.User{}, err
	}
	return apiclient.Decode[identity.User](resp)
}

// ForgotPassword asks the server to mail a reset link
func (a *AuthAPI) ForgotPassword(ctx context.Context, email string) error {
	resp, err := a.public(ctx, http.MethodPost, "/auth/forgot-password", nil, map[string]string{"email": email})
	if err != nil {
		return err
	}
	return apiclient.DecodeAck(resp)
}

// UpdateProfile saves profile fields and returns the updated user
func (a *AuthAPI) UpdateProfile(ctx context.Context, in identity.ProfileUpdate) (identity.User, error) {
	resp, err := a.authed(ctx, http.MethodPut, "/users/profile", nil, in)
	if err != nil {
		return identity.User{}, err
	}
	return apiclient.Decode[identity.User](resp)
}

// ChangePassword replaces the account password
func (a *AuthAPI) ChangePassword(ctx context.Context, in identity.PasswordChange) error {
	resp, err := a.authed(ctx, http.MethodPut, "/users/password", nil, in)
	if err != nil {
		return err
	}
	return apiclient.DecodeAck(resp)
}

func decodeSession(resp *apiclient.Response) (identity.Session, error) {
	env, err := apiclient.DecodeAuth[identity.User](resp)
	if err != nil {
		return identity.Session{}, err
	}
	return identity.Session{Token: env.Token, User: env.User}, nil
}
