package tokenstore_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/tokenstore"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "test-signing-key"

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// forgeToken builds a signed token around the given expiry. The client never
// verifies signatures, so any key works.
func forgeToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	return raw
}

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	return forgeToken(t, jwtlib.MapClaims{
		"sub":        "user-1",
		"role":       "member",
		"iss":        "com.testissuer",
		"iat":        testNow.Add(-time.Minute).Unix(),
		"nbf":        testNow.Add(-time.Minute).Unix(),
		"exp":        exp.Unix(),
		"token_type": "access",
	})
}

func newManager(t *testing.T, options ...tokenstore.ManagerOption) *tokenstore.Manager {
	t.Helper()
	options = append([]tokenstore.ManagerOption{
		tokenstore.WithNowTime(func() time.Time { return testNow }),
	}, options...)
	manager, err := tokenstore.NewManager(options...)
	require.NoError(t, err)
	return manager
}

func TestDecodeClaims(t *testing.T) {
	exp := testNow.Add(time.Hour)
	claims, err := tokenstore.DecodeClaims(tokenExpiringAt(t, exp))
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "member", claims.Role)
	require.Equal(t, "com.testissuer", claims.Issuer)
	require.Equal(t, "access", claims.TokenType)
	require.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
}

func TestDecodeClaimsMalformed(t *testing.T) {
	_, err := tokenstore.DecodeClaims("not-a-jwt")
	require.Error(t, err)

	_, err = tokenstore.DecodeClaims("")
	require.ErrorIs(t, err, tokenstore.MalformedTokenErr)
}

func TestDecodeClaimsMissingExpiry(t *testing.T) {
	raw := forgeToken(t, jwtlib.MapClaims{"sub": "user-1"})
	_, err := tokenstore.DecodeClaims(raw)
	require.ErrorIs(t, err, tokenstore.MissingExpiryErr)
}

func TestIsExpired(t *testing.T) {
	manager := newManager(t)

	tests := []struct {
		name    string
		exp     time.Time
		expired bool
	}{
		{"already expired", testNow.Add(-time.Minute), true},
		{"expires now", testNow, true},
		{"inside the skew window", testNow.Add(tokenstore.DefaultSkew), true},
		{"just beyond the skew window", testNow.Add(tokenstore.DefaultSkew + time.Second), false},
		{"comfortably valid", testNow.Add(time.Hour), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expired, manager.IsExpired(tokenExpiringAt(t, tc.exp)))
		})
	}
}

func TestIsExpiredMalformedFailsClosed(t *testing.T) {
	manager := newManager(t)
	require.True(t, manager.IsExpired("garbage"))
	require.True(t, manager.IsExpired(""))
}

func TestSetTokensRoundTrip(t *testing.T) {
	manager := newManager(t)
	require.NoError(t, manager.SetTokens("access-1", "refresh-1"))

	access, ok := manager.AccessToken()
	require.True(t, ok)
	require.Equal(t, "access-1", access)

	refresh, ok := manager.RefreshToken()
	require.True(t, ok)
	require.Equal(t, "refresh-1", refresh)
}

func TestSetAccessTokenKeepsRefreshToken(t *testing.T) {
	manager := newManager(t)
	require.NoError(t, manager.SetTokens("access-1", "refresh-1"))
	require.NoError(t, manager.SetAccessToken("access-2"))

	access, _ := manager.AccessToken()
	require.Equal(t, "access-2", access)
	refresh, _ := manager.RefreshToken()
	require.Equal(t, "refresh-1", refresh)
}

func TestHasValidSession(t *testing.T) {
	manager := newManager(t)
	require.False(t, manager.HasValidSession())

	require.NoError(t, manager.SetTokens(tokenExpiringAt(t, testNow.Add(time.Hour)), "refresh-1"))
	require.True(t, manager.HasValidSession())

	require.NoError(t, manager.SetAccessToken(tokenExpiringAt(t, testNow.Add(-time.Hour))))
	require.False(t, manager.HasValidSession())
}

func TestClear(t *testing.T) {
	manager := newManager(t)
	require.NoError(t, manager.SetTokens(tokenExpiringAt(t, testNow.Add(time.Hour)), "refresh-1"))
	require.True(t, manager.HasValidSession())

	require.NoError(t, manager.Clear())
	require.False(t, manager.HasValidSession())
	_, ok := manager.AccessToken()
	require.False(t, ok)
	_, ok = manager.RefreshToken()
	require.False(t, ok)
}
