// Package tokenstore owns the client-side credential pair: durable storage of
// the access and refresh tokens, and expiry evaluation derived from the access
// token's own claims.
package tokenstore

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DefaultSkew is subtracted from a token's remaining lifetime so a request
// never races a token that expires mid-flight.
const DefaultSkew = 30 * time.Second

// Credentials is the persisted token pair.
type Credentials struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Repo is the durable backing for credentials. Implementations must scope the
// stored values to this installation and keep them unreadable to other users.
type Repo interface {
	Load() (*Credentials, error)
	Save(*Credentials) error
	Clear() error
}

// Manager is the single owner of the credential pair. Reads are served from
// memory and never fail; writes go through to the configured Repo. A Manager
// without a Repo is purely in-memory.
type Manager struct {
	mu      sync.RWMutex
	creds   Credentials
	repo    Repo
	skew    time.Duration
	nowFunc func() time.Time
}

// ManagerOption modifies a Manager instance.
type ManagerOption func(*Manager)

// WithRepo sets the durable backing store.
func WithRepo(repo Repo) ManagerOption {
	return func(m *Manager) { m.repo = repo }
}

// WithSkew overrides the expiry safety margin.
func WithSkew(skew time.Duration) ManagerOption {
	return func(m *Manager) { m.skew = skew }
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) { m.nowFunc = nowFunc }
}

// NewManager initialises a Manager. If a Repo is configured, previously
// persisted credentials are read back so a restarted client resumes its
// session.
func NewManager(options ...ManagerOption) (*Manager, error) {
	m := &Manager{
		skew:    DefaultSkew,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}

	if m.repo != nil {
		creds, err := m.repo.Load()
		if err != nil {
			return nil, errors.Wrap(err, "[NewManager] repo.Load")
		}
		if creds != nil {
			m.creds = *creds
		}
	}
	return m, nil
}

// SetTokens persists both tokens, overwriting any prior values.
func (m *Manager) SetTokens(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{AccessToken: access, RefreshToken: refresh}
	return m.persistLocked()
}

// SetAccessToken persists only the access token, used after a refresh.
func (m *Manager) SetAccessToken(access string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds.AccessToken = access
	return m.persistLocked()
}

// AccessToken returns the stored access token, or false when absent.
func (m *Manager) AccessToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds.AccessToken, m.creds.AccessToken != ""
}

// RefreshToken returns the stored refresh token, or false when absent.
func (m *Manager) RefreshToken() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds.RefreshToken, m.creds.RefreshToken != ""
}

// IsExpired reports whether the raw token has expired, applying the skew
// margin. A token that cannot be decoded is expired.
func (m *Manager) IsExpired(raw string) bool {
	claims, err := DecodeClaims(raw)
	if err != nil {
		return true
	}
	return !m.nowFunc().Add(m.skew).Before(claims.ExpiresAt)
}

// HasValidSession reports whether an access token is present and not expired.
func (m *Manager) HasValidSession() bool {
	access, ok := m.AccessToken()
	if !ok {
		return false
	}
	return !m.IsExpired(access)
}

// Clear removes both tokens from memory and from the backing store. It must
// be called on logout and on irrecoverable refresh failure.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
	if m.repo == nil {
		return nil
	}
	if err := m.repo.Clear(); err != nil {
		return errors.Wrap(err, "[Manager.Clear] repo.Clear")
	}
	return nil
}

func (m *Manager) persistLocked() error {
	if m.repo == nil {
		return nil
	}
	creds := m.creds
	if err := m.repo.Save(&creds); err != nil {
		return errors.Wrap(err, "[Manager] repo.Save")
	}
	return nil
}
