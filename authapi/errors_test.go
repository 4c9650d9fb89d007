package authapi_test

import (
	"net/http"
	"testing"

	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFromEnvelope(t *testing.T) {
	apiErr := authapi.FromEnvelope(http.StatusBadRequest, &authapi.Envelope{
		Error:     "validation failed",
		ErrorCode: authapi.CodeValidation,
		Details:   map[string]string{"email": "invalid email address"},
	})
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, authapi.CodeValidation, apiErr.Code)
	require.Equal(t, "invalid email address", apiErr.Details["email"])
	require.Contains(t, apiErr.Error(), "validation failed")
}

func TestFromEnvelopeWithoutMessageUsesStatusText(t *testing.T) {
	apiErr := authapi.FromEnvelope(http.StatusUnauthorized, &authapi.Envelope{})
	require.Equal(t, http.StatusText(http.StatusUnauthorized), apiErr.Message)
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		classify func(error) bool
	}{
		{"network error", authapi.NewNetworkError(errors.New("connection refused")), authapi.IsNetworkError},
		{"validation by code", &authapi.APIError{Code: authapi.CodeValidation}, authapi.IsValidationError},
		{"validation by details", &authapi.APIError{Details: map[string]string{"email": "taken"}}, authapi.IsValidationError},
		{"challenge expired", &authapi.APIError{Code: authapi.CodeChallengeExpired}, authapi.IsChallengeExpired},
		{"challenge expired sentinel", authapi.ChallengeExpiredErr, authapi.IsChallengeExpired},
		{"authentication expired", &authapi.APIError{Code: authapi.CodeTokenExpired}, authapi.IsAuthenticationExpired},
		{"authentication expired wrapped sentinel", errors.Wrap(authapi.AuthenticationExpiredErr, "refresh rejected"), authapi.IsAuthenticationExpired},
		{"account locked", &authapi.APIError{Code: authapi.CodeAccountLocked}, authapi.IsAccountLocked},
		{"conflict by code", &authapi.APIError{Code: authapi.CodeConflict}, authapi.IsConflict},
		{"conflict by status", &authapi.APIError{Status: http.StatusConflict}, authapi.IsConflict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.classify(tc.err))
		})
	}
}

func TestClassifiersRejectUnrelatedErrors(t *testing.T) {
	err := errors.New("something else entirely")
	require.False(t, authapi.IsNetworkError(err))
	require.False(t, authapi.IsValidationError(err))
	require.False(t, authapi.IsChallengeExpired(err))
	require.False(t, authapi.IsAuthenticationExpired(err))
	require.False(t, authapi.IsAccountLocked(err))
	require.False(t, authapi.IsConflict(err))
}
