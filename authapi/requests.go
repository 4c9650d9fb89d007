package authapi

import "time"

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the data payload of a successful POST /login. When the
// account requires a second factor the token pair is absent and Requires2FA
// is set together with the single-use TempToken.
type LoginResult struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Requires2FA  bool   `json:"requires_2fa,omitempty"`
	TempToken    string `json:"temp_token,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// RegisterRequest is the payload for POST /register. The role is fixed to the
// service default and is not client-selectable.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// RefreshRequest is the payload for POST /refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResult is the data payload of a successful POST /refresh. The
// refresh token is not rotated in this flow.
type RefreshResult struct {
	AccessToken string `json:"access_token"`
}

// VerifyRequest is the payload for POST /2fa/verify and /2fa/verify-backup.
type VerifyRequest struct {
	TempToken string `json:"temp_token"`
	Code      string `json:"code"`
}

// TwoFactorSetup is the provisioning payload from POST /2fa/enable. Backup
// codes are shown once and must never reach durable storage client-side.
type TwoFactorSetup struct {
	Secret      string   `json:"secret"`
	OTPAuthURL  string   `json:"otpauth_url"`
	SetupToken  string   `json:"setup_token"`
	BackupCodes []string `json:"backup_codes"`
}

// VerifyEnableRequest is the payload for POST /2fa/verify-enable.
type VerifyEnableRequest struct {
	SetupToken string `json:"setup_token"`
	Code       string `json:"code"`
}

// DisableTwoFactorRequest is the payload for POST /2fa/disable. Disabling is
// a step-up confirmation: both the password and a valid code are required.
type DisableTwoFactorRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// RegenerateBackupCodesRequest is the payload for POST /2fa/regenerate-backup-codes.
type RegenerateBackupCodesRequest struct {
	Code string `json:"code"`
}

// BackupCodesResult carries a freshly issued set of backup codes.
type BackupCodesResult struct {
	BackupCodes []string `json:"backup_codes"`
}

// BackupCodeStatus is the data payload of GET /2fa/backup-codes/status.
type BackupCodeStatus struct {
	Remaining int `json:"remaining"`
	Total     int `json:"total"`
}

// User is the authenticated identity snapshot returned by GET /me.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Verified         bool      `json:"verified"`
	DisplayName      string    `json:"display_name"`
	Role             string    `json:"role"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	Providers        []string  `json:"providers,omitempty"`
	HasPassword      bool      `json:"has_password"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UserPatch is the payload for PATCH /me. Nil fields are left unchanged.
type UserPatch struct {
	DisplayName *string `json:"display_name,omitempty"`
	Email       *string `json:"email,omitempty"`
}

// RemoteSession is a point-in-time snapshot of a server-tracked session.
type RemoteSession struct {
	ID             string    `json:"id"`
	Device         string    `json:"device"`
	IPAddress      string    `json:"ip_address"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	Current        bool      `json:"current"`
}

// SessionList is the data payload of GET /sessions.
type SessionList struct {
	Sessions []RemoteSession `json:"sessions"`
}

// RevokeAllRequest is the payload for DELETE /sessions/all.
type RevokeAllRequest struct {
	IncludeCurrent bool `json:"include_current"`
}

// RevokeAllResult reports the server-authoritative count of revoked sessions.
type RevokeAllResult struct {
	Revoked int `json:"revoked"`
}

// PasswordResetRequest is the payload for POST /password/request-reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordReset is the payload for POST /password/reset.
type PasswordReset struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChange is the payload for POST /password/change.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordSet is the payload for POST /password/set, used by OAuth-only
// accounts that have no password yet.
type PasswordSet struct {
	NewPassword string `json:"new_password"`
}

// OAuthLinkRequest is the payload for POST /oauth/google/link.
type OAuthLinkRequest struct {
	Code string `json:"code"`
}
