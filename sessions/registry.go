// Package sessions enumerates and revokes the server-tracked sessions tied to
// the authenticated account. The local list is only ever a point-in-time
// snapshot; the server stays authoritative.
package sessions

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/authclient"
	"github.com/pkg/errors"
)

// Registry is a thin consumer of the auth client for the session-management
// endpoints.
type Registry struct {
	client *authclient.Client

	mu       sync.Mutex
	snapshot []authapi.RemoteSession
}

// NewRegistry initialises a Registry over the given client.
func NewRegistry(client *authclient.Client) (*Registry, error) {
	if client == nil {
		return nil, errors.New("[NewRegistry] client is required")
	}
	return &Registry{client: client}, nil
}

// List fetches all sessions for the account, replacing the local snapshot.
// The current session is flagged by the server.
func (r *Registry) List(ctx context.Context) ([]authapi.RemoteSession, error) {
	var result authapi.SessionList
	if err := r.client.DoJSON(ctx, http.MethodGet, "/sessions", nil, &result); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.snapshot = result.Sessions
	r.mu.Unlock()
	return r.Cached(), nil
}

// Cached returns a copy of the last fetched snapshot.
func (r *Registry) Cached() []authapi.RemoteSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]authapi.RemoteSession, len(r.snapshot))
	copy(out, r.snapshot)
	return out
}

// Revoke revokes one non-current session. On success the session is removed
// from the local snapshot; on failure the snapshot is left untouched and the
// server's error is surfaced.
func (r *Registry) Revoke(ctx context.Context, id string) error {
	r.mu.Lock()
	for _, s := range r.snapshot {
		if s.ID == id && s.Current {
			r.mu.Unlock()
			return authapi.CurrentSessionErr
		}
	}
	r.mu.Unlock()

	if _, err := r.client.Do(ctx, http.MethodDelete, "/sessions/"+id, nil); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.snapshot {
		if s.ID == id {
			r.snapshot = append(r.snapshot[:i], r.snapshot[i+1:]...)
			return nil
		}
	}
	return nil
}

// RevokeAll revokes every other session, or every session including the
// current one when explicitly requested. The count of affected sessions is
// server-authoritative, so the snapshot is re-fetched rather than trimmed
// optimistically.
func (r *Registry) RevokeAll(ctx context.Context, includeCurrent bool) (int, error) {
	var result authapi.RevokeAllResult
	if err := r.client.DoJSON(ctx, http.MethodDelete, "/sessions/all", &authapi.RevokeAllRequest{
		IncludeCurrent: includeCurrent,
	}, &result); err != nil {
		return 0, err
	}

	if _, err := r.List(ctx); err != nil {
		return result.Revoked, errors.Wrap(err, "[Registry.RevokeAll] refresh list")
	}
	return result.Revoked, nil
}
