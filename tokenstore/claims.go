package tokenstore

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var (
	MalformedTokenErr = errors.New("malformed token")
	MissingExpiryErr  = errors.New("token missing exp claim")
)

// Claims holds the decoded payload of an access token. The client never has
// the verification key, so claims are extracted without signature checking and
// used only for expiry bookkeeping and identity hints, never for trust
// decisions.
type Claims struct {
	Subject   string
	Role      string
	Issuer    string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
	TokenType string
}

// DecodeClaims extracts the claims from a raw access token. Any token that
// cannot be decoded, or that carries no exp claim, is an error: callers treat
// undecodable tokens as expired.
func DecodeClaims(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, MalformedTokenErr
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "[DecodeClaims] ParseUnverified")
	}

	mapClaims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, MalformedTokenErr
	}

	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		return nil, MissingExpiryErr
	}

	sub, _ := mapClaims["sub"].(string)
	role, _ := mapClaims["role"].(string)
	iss, _ := mapClaims["iss"].(string)
	tokenType, _ := mapClaims["token_type"].(string)

	claims := &Claims{
		Subject:   sub,
		Role:      role,
		Issuer:    iss,
		ExpiresAt: time.Unix(int64(exp), 0),
		TokenType: tokenType,
	}
	if iat, ok := mapClaims["iat"].(float64); ok {
		claims.IssuedAt = time.Unix(int64(iat), 0)
	}
	if nbf, ok := mapClaims["nbf"].(float64); ok {
		claims.NotBefore = time.Unix(int64(nbf), 0)
	}
	return claims, nil
}
