// Package authflow drives the login state machine: submitting credentials,
// stepping up into a two-factor challenge, and transitioning between the
// unauthenticated, pending-two-factor and authenticated states.
package authflow

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/authclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Flow orchestrates the login lifecycle. Mutating operations are serialised:
// while one is in flight, further mutating calls fail with
// OperationInFlightErr rather than double-submitting.
type Flow struct {
	client *authclient.Client
	log    zerolog.Logger

	mu        sync.Mutex
	status    Status
	user      *authapi.User
	tempToken string
	busy      bool

	// generation is bumped on logout so that a request completing after the
	// session it belonged to has ended is discarded, not applied.
	generation uint64
}

// FlowOption modifies a Flow instance.
type FlowOption func(*Flow)

// WithLogger sets the flow logger.
func WithLogger(log zerolog.Logger) FlowOption {
	return func(f *Flow) { f.log = log }
}

// NewFlow initialises a Flow over the given client.
func NewFlow(client *authclient.Client, options ...FlowOption) (*Flow, error) {
	if client == nil {
		return nil, errors.New("[NewFlow] client is required")
	}
	flow := &Flow{
		client: client,
		log:    zerolog.Nop(),
		status: StatusUnauthenticated,
	}
	for _, opt := range options {
		opt(flow)
	}
	return flow, nil
}

// Status returns the current authentication state.
func (f *Flow) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// CurrentUser returns a copy of the authenticated identity snapshot, or nil
// when not authenticated.
func (f *Flow) CurrentUser() *authapi.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return nil
	}
	user := *f.user
	return &user
}

// Login submits primary credentials. The outcome is either Authenticated
// (tokens stored before the state is observable), PendingTwoFactor (challenge
// token held in memory only), or Unauthenticated with an error.
func (f *Flow) Login(ctx context.Context, email, password string) (Status, error) {
	gen, err := f.begin()
	if err != nil {
		return f.Status(), err
	}
	defer f.end()

	var result authapi.LoginResult
	if err := f.client.DoJSON(ctx, http.MethodPost, "/login", &authapi.LoginRequest{
		Email:    email,
		Password: password,
	}, &result); err != nil {
		return StatusUnauthenticated, err
	}

	if result.Requires2FA {
		if result.TempToken == "" {
			return StatusUnauthenticated, errors.New("[Flow.Login] 2fa required but no temp token issued")
		}
		f.apply(gen, func() error {
			f.status = StatusPendingTwoFactor
			f.tempToken = result.TempToken
			f.user = nil
			return nil
		})
		return f.Status(), nil
	}

	if err := f.establishSession(gen, &result); err != nil {
		return StatusUnauthenticated, err
	}
	return f.Status(), nil
}

// VerifyTOTP submits a 6-digit authenticator code for the pending challenge.
func (f *Flow) VerifyTOTP(ctx context.Context, code string) (Status, error) {
	return f.verify(ctx, "/2fa/verify", code)
}

// VerifyBackupCode submits a single-use backup code for the pending challenge.
func (f *Flow) VerifyBackupCode(ctx context.Context, code string) (Status, error) {
	return f.verify(ctx, "/2fa/verify-backup", code)
}

func (f *Flow) verify(ctx context.Context, path, code string) (Status, error) {
	gen, err := f.begin()
	if err != nil {
		return f.Status(), err
	}
	defer f.end()

	f.mu.Lock()
	tempToken := f.tempToken
	f.mu.Unlock()

	// No challenge token client-side (e.g. restart mid-challenge): the
	// challenge is not resumable, a fresh login is the only way forward.
	if tempToken == "" {
		return StatusUnauthenticated, authapi.NoPendingChallengeErr
	}

	var result authapi.LoginResult
	if err := f.client.DoJSON(ctx, http.MethodPost, path, &authapi.VerifyRequest{
		TempToken: tempToken,
		Code:      code,
	}, &result); err != nil {
		if authapi.IsChallengeExpired(err) {
			f.apply(gen, func() error {
				f.status = StatusUnauthenticated
				f.tempToken = ""
				return nil
			})
			return StatusUnauthenticated, err
		}
		// Wrong code: the challenge stays pending, the caller may retry.
		return f.Status(), err
	}

	if err := f.establishSession(gen, &result); err != nil {
		return StatusUnauthenticated, err
	}
	return f.Status(), nil
}

// Logout revokes the current session server-side on a best-effort basis and
// unconditionally clears local credentials. Requests still in flight when
// Logout runs have their results discarded.
func (f *Flow) Logout(ctx context.Context) error {
	if _, err := f.client.Do(ctx, http.MethodPost, "/logout", nil); err != nil {
		f.log.Warn().Err(err).Msg("server-side logout failed, clearing local session anyway")
	}

	f.mu.Lock()
	f.generation++
	f.status = StatusUnauthenticated
	f.user = nil
	f.tempToken = ""
	f.mu.Unlock()

	if err := f.client.Tokens().Clear(); err != nil {
		return errors.Wrap(err, "[Flow.Logout] clear tokens")
	}
	return nil
}

// Resume restores the authenticated state on startup from persisted
// credentials. A pending two-factor challenge is never resumable.
func (f *Flow) Resume(ctx context.Context) (Status, error) {
	gen, err := f.begin()
	if err != nil {
		return f.Status(), err
	}
	defer f.end()

	tokens := f.client.Tokens()
	_, hasRefresh := tokens.RefreshToken()
	if !tokens.HasValidSession() && !hasRefresh {
		return StatusUnauthenticated, nil
	}

	var user authapi.User
	if err := f.client.DoJSON(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		if authapi.IsAuthenticationExpired(err) {
			return StatusUnauthenticated, nil
		}
		return StatusUnauthenticated, err
	}

	f.apply(gen, func() error {
		f.status = StatusAuthenticated
		f.user = &user
		return nil
	})
	return f.Status(), nil
}

// establishSession stores the issued token pair and, only once the write has
// completed, makes the Authenticated state observable. The temp token is
// discarded whether or not the state change applies.
func (f *Flow) establishSession(gen uint64, result *authapi.LoginResult) error {
	if result.AccessToken == "" {
		return errors.New("[Flow] login response missing access token")
	}
	return f.apply(gen, func() error {
		if err := f.client.Tokens().SetTokens(result.AccessToken, result.RefreshToken); err != nil {
			return errors.Wrap(err, "[Flow] store tokens")
		}
		f.status = StatusAuthenticated
		f.user = result.User
		f.tempToken = ""
		return nil
	})
}

// begin marks a mutating operation as in flight, enforcing the no
// double-submission rule, and captures the session generation the operation
// belongs to.
func (f *Flow) begin() (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return 0, authapi.OperationInFlightErr
	}
	f.busy = true
	return f.generation, nil
}

func (f *Flow) end() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// apply runs fn under the state lock unless the session the operation belongs
// to has ended, in which case the result is discarded.
func (f *Flow) apply(gen uint64, fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		f.log.Debug().Msg("discarding completion from an ended session")
		return nil
	}
	return fn()
}
