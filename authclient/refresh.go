package authclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/pkg/errors"
)

// refreshAccessToken exchanges the stored refresh token for a new access
// token. Concurrent callers share a single in-flight refresh: only one
// /refresh HTTP call is made per burst of 401s.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return nil, c.doRefresh(ctx)
	})
	return err
}

func (c *Client) doRefresh(ctx context.Context) error {
	refresh, ok := c.tokens.RefreshToken()
	if !ok {
		return authapi.AuthenticationExpiredErr
	}

	// The refresh token is only ever sent to the refresh endpoint, never as
	// a bearer credential.
	payload, err := json.Marshal(&authapi.RefreshRequest{RefreshToken: refresh})
	if err != nil {
		return errors.Wrap(err, "[Client.doRefresh] marshal request")
	}
	status, env, err := c.send(ctx, http.MethodPost, "/refresh", payload, false)
	if err != nil {
		// No response at all: the session is not known to be over, leave
		// the tokens in place so a later request can retry.
		return err
	}

	if !env.Success || status >= http.StatusBadRequest {
		// The refresh token was rejected: the session is over.
		if clearErr := c.tokens.Clear(); clearErr != nil {
			c.log.Warn().Err(clearErr).Msg("failed to clear tokens after rejected refresh")
		}
		return errors.Wrap(authapi.AuthenticationExpiredErr, "[Client.doRefresh] refresh rejected")
	}

	var result authapi.RefreshResult
	if err := env.Decode(&result); err != nil {
		return errors.Wrap(err, "[Client.doRefresh] decode refresh result")
	}
	if result.AccessToken == "" {
		return errors.New("[Client.doRefresh] refresh response missing access token")
	}
	if err := c.tokens.SetAccessToken(result.AccessToken); err != nil {
		return errors.Wrap(err, "[Client.doRefresh] store access token")
	}
	c.log.Debug().Msg("access token refreshed")
	return nil
}
