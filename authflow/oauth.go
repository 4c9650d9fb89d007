package authflow

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const googleIssuer = "https://accounts.google.com"

// GoogleAuth constructs the authorization redirect for the parallel Google
// login path. The code exchange itself completes server-side at the callback
// route; this client only builds the URL the user-agent is sent to.
type GoogleAuth struct {
	cfg oauth2.Config
}

// GoogleAuthOption modifies a GoogleAuth instance.
type GoogleAuthOption func(*GoogleAuth)

// WithEndpoint overrides the authorization endpoint, bypassing OIDC
// discovery. Primarily for testing.
func WithEndpoint(endpoint oauth2.Endpoint) GoogleAuthOption {
	return func(g *GoogleAuth) { g.cfg.Endpoint = endpoint }
}

// NewGoogleAuth initialises the Google authorization URL builder. Unless an
// endpoint is provided, it is resolved through OIDC discovery against the
// Google issuer.
func NewGoogleAuth(ctx context.Context, clientID, callbackURL string, options ...GoogleAuthOption) (*GoogleAuth, error) {
	if clientID == "" {
		return nil, errors.New("[NewGoogleAuth] clientID is required")
	}
	if callbackURL == "" {
		return nil, errors.New("[NewGoogleAuth] callbackURL is required")
	}

	ga := &GoogleAuth{
		cfg: oauth2.Config{
			ClientID:    clientID,
			RedirectURL: callbackURL,
			Scopes:      []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}
	for _, opt := range options {
		opt(ga)
	}

	if ga.cfg.Endpoint.AuthURL == "" {
		provider, err := oidc.NewProvider(ctx, googleIssuer)
		if err != nil {
			return nil, errors.Wrap(err, "[NewGoogleAuth] oidc discovery")
		}
		ga.cfg.Endpoint = provider.Endpoint()
	}
	return ga, nil
}

// AuthCodeURL returns the URL to redirect the user-agent to. The state value
// is echoed back at the callback and must be validated there.
func (g *GoogleAuth) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}
