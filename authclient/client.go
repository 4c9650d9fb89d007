// Package authclient wraps HTTP access to the Auth Service: it attaches
// bearer credentials from the token store, detects authentication rejection,
// and transparently performs a refresh-and-retry cycle.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/tokenstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 15 * time.Second

// Client issues requests against the Auth Service. All expected failure
// modes come back as a typed *authapi.APIError; the only errors that escape
// untyped are genuinely unexpected ones such as malformed JSON from the
// server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *tokenstore.Manager
	log        zerolog.Logger

	// refreshGroup collapses concurrent 401s into a single in-flight
	// refresh call. Callers that observe a 401 while a refresh is already
	// running await its result rather than issuing a second refresh.
	refreshGroup singleflight.Group
}

// Option modifies a Client instance.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New initialises a Client against the given base URL (e.g.
// "https://api.example.com/api/v1/auth").
func New(baseURL string, tokens *tokenstore.Manager, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[authclient.New] baseURL is required")
	}
	if tokens == nil {
		return nil, errors.New("[authclient.New] token manager is required")
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// Tokens exposes the token manager to the flow layers built on this client.
func (c *Client) Tokens() *tokenstore.Manager {
	return c.tokens
}

// Do issues a request and returns the decoded response envelope. On a 401
// with a refresh token present it runs the refresh protocol and retries the
// original request exactly once with the same method and body. A failed
// envelope (Success=false) is returned together with a typed error; the
// envelope's verdict is authoritative regardless of HTTP status.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*authapi.Envelope, error) {
	// Buffer the body once so a retry replays identical bytes.
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Client.Do] marshal body")
		}
	}

	status, env, err := c.send(ctx, method, path, payload, true)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		if _, ok := c.tokens.RefreshToken(); ok {
			if refreshErr := c.refreshAccessToken(ctx); refreshErr != nil {
				// Refresh failed: surface the original 401 as an
				// expired-session error, no further retries.
				c.log.Warn().Err(refreshErr).Str("path", path).Msg("token refresh failed")
				return env, refreshErr
			}
			c.log.Debug().Str("path", path).Msg("retrying request after token refresh")
			status, env, err = c.send(ctx, method, path, payload, true)
			if err != nil {
				return nil, err
			}
			if status == http.StatusUnauthorized {
				// A 401 that survived the refresh means the session is
				// over, whatever error code the server did or did not send.
				return env, errors.Wrap(authapi.AuthenticationExpiredErr, "[Client.Do] request rejected after refresh")
			}
		}
	}

	if !env.Success {
		return env, authapi.FromEnvelope(status, env)
	}
	return env, nil
}

// DoJSON issues a request via Do and unmarshals the envelope's data payload
// into out.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out any) error {
	env, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := env.Decode(out); err != nil {
		return errors.Wrap(err, "[Client.DoJSON] decode payload")
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, withBearer bool) (int, *authapi.Envelope, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, errors.Wrap(err, "[Client.send] NewRequestWithContext")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withBearer {
		if access, ok := c.tokens.AccessToken(); ok {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, authapi.NewNetworkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, authapi.NewNetworkError(err)
	}

	env := &authapi.Envelope{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, env); err != nil {
			return 0, nil, errors.Wrap(err, "[Client.send] malformed response body")
		}
	}
	return resp.StatusCode, env, nil
}
