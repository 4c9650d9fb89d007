// Package account covers the current-user surface of the Auth Service:
// registration, profile reads and updates, the password lifecycle, and OAuth
// provider linking.
package account

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/authclient"
	"github.com/pkg/errors"
)

// Service is a thin consumer of the auth client for the /me, /register,
// /password and /oauth endpoints.
type Service struct {
	client *authclient.Client
}

// NewService initialises a Service over the given client.
func NewService(client *authclient.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[account.NewService] client is required")
	}
	return &Service{client: client}, nil
}

// Register creates a new account. The role is fixed to the service default.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*authapi.User, error) {
	var user authapi.User
	if err := s.client.DoJSON(ctx, http.MethodPost, "/register", &authapi.RegisterRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Current fetches the authenticated identity snapshot. Callers should
// re-query after any mutation that could change it.
func (s *Service) Current(ctx context.Context) (*authapi.User, error) {
	var user authapi.User
	if err := s.client.DoJSON(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update applies a partial profile update and returns the refreshed snapshot.
func (s *Service) Update(ctx context.Context, patch *authapi.UserPatch) (*authapi.User, error) {
	if _, err := s.client.Do(ctx, http.MethodPatch, "/me", patch); err != nil {
		return nil, err
	}
	return s.Current(ctx)
}

// ClearAvatar removes the account's profile image.
func (s *Service) ClearAvatar(ctx context.Context) error {
	_, err := s.client.Do(ctx, http.MethodDelete, "/me/profile", nil)
	return err
}

// RequestPasswordReset starts the email-based reset flow.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/password/request-reset", &authapi.PasswordResetRequest{Email: email})
	return err
}

// ResetPassword completes the reset flow with the emailed token.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/password/reset", &authapi.PasswordReset{
		Token:       token,
		NewPassword: newPassword,
	})
	return err
}

// ChangePassword replaces the password for an authenticated account.
func (s *Service) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/password/change", &authapi.PasswordChange{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	})
	return err
}

// SetPassword sets an initial password on an OAuth-only account.
func (s *Service) SetPassword(ctx context.Context, newPassword string) error {
	_, err := s.client.Do(ctx, http.MethodPost, "/password/set", &authapi.PasswordSet{NewPassword: newPassword})
	return err
}

// LinkGoogle attaches a Google identity to the account using the callback
// authorization code.
func (s *Service) LinkGoogle(ctx context.Context, code string) (*authapi.User, error) {
	if _, err := s.client.Do(ctx, http.MethodPost, "/oauth/google/link", &authapi.OAuthLinkRequest{Code: code}); err != nil {
		return nil, err
	}
	return s.Current(ctx)
}

// UnlinkGoogle detaches the Google identity from the account.
func (s *Service) UnlinkGoogle(ctx context.Context) (*authapi.User, error) {
	if _, err := s.client.Do(ctx, http.MethodDelete, "/oauth/google/unlink", nil); err != nil {
		return nil, err
	}
	return s.Current(ctx)
}
