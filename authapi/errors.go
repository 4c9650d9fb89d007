package authapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced by the Auth Service, plus the synthetic code the client
// attaches when no response was received at all.
const (
	CodeNetworkError       = "NETWORK_ERROR"
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeChallengeExpired   = "CHALLENGE_EXPIRED"
	CodeInvalidCode        = "INVALID_2FA_CODE"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeConflict           = "CONFLICT"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
)

var (
	AuthenticationExpiredErr = errors.New("authentication expired")
	ChallengeExpiredErr      = errors.New("two factor challenge expired")
	NoPendingChallengeErr    = errors.New("no pending two factor challenge")
	OperationInFlightErr     = errors.New("operation already in flight")
	CurrentSessionErr        = errors.New("cannot revoke the current session")
)

// APIError is the typed failure result returned by the client for every
// expected failure mode. Status is zero when no response was received.
type APIError struct {
	Status  int               `json:"status"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth api: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("auth api: %s", e.Message)
}

// NewNetworkError wraps a transport failure (no response received) as an
// APIError so callers can treat it as retryable.
func NewNetworkError(cause error) *APIError {
	return &APIError{
		Code:    CodeNetworkError,
		Message: cause.Error(),
	}
}

// FromEnvelope builds an APIError from a failed response envelope.
func FromEnvelope(status int, env *Envelope) *APIError {
	msg := env.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{
		Status:  status,
		Code:    env.ErrorCode,
		Message: msg,
		Details: env.Details,
	}
}

// IsNetworkError reports whether err represents a transport failure with no
// server response. These are always safe to retry.
func IsNetworkError(err error) bool {
	return hasCode(err, CodeNetworkError)
}

// IsValidationError reports whether err carries field-level details that
// should be surfaced next to the offending fields.
func IsValidationError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == CodeValidation || len(apiErr.Details) > 0
}

// IsChallengeExpired reports whether the pending two-factor challenge is no
// longer valid and the login flow must be restarted.
func IsChallengeExpired(err error) bool {
	return errors.Is(err, ChallengeExpiredErr) || hasCode(err, CodeChallengeExpired)
}

// IsAuthenticationExpired reports whether the session is over: a 401 that
// survived a refresh attempt, or a refresh that was itself rejected.
func IsAuthenticationExpired(err error) bool {
	return errors.Is(err, AuthenticationExpiredErr) || hasCode(err, CodeTokenExpired)
}

// IsAccountLocked reports whether login was rejected because the account is
// locked; retrying with the same credentials will not help.
func IsAccountLocked(err error) bool {
	return hasCode(err, CodeAccountLocked)
}

// IsConflict reports a business-rule rejection (email already registered,
// password mismatch on a step-up confirmation).
func IsConflict(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == CodeConflict || apiErr.Status == http.StatusConflict
}

func hasCode(err error, code string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == code
}
