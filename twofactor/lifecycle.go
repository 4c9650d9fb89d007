// Package twofactor manages the 2FA lifecycle for an authenticated account:
// enabling, step-up disabling, and backup-code issuance. Provisioning secrets
// and backup codes are held in memory only and are never written to durable
// storage by this client.
package twofactor

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-auth-client/authapi"
	"github.com/jrsteele09/go-auth-client/authclient"
	"github.com/pkg/errors"
)

var NoPendingSetupErr = errors.New("no two factor setup in progress")

// Lifecycle drives enable/verify/disable and backup-code operations over the
// auth client.
type Lifecycle struct {
	client *authclient.Client

	mu      sync.Mutex
	pending *authapi.TwoFactorSetup
}

// NewLifecycle initialises a Lifecycle over the given client.
func NewLifecycle(client *authclient.Client) (*Lifecycle, error) {
	if client == nil {
		return nil, errors.New("[NewLifecycle] client is required")
	}
	return &Lifecycle{client: client}, nil
}

// Enable requests a provisioning payload: the TOTP secret, the QR payload,
// a one-time setup token and the initial backup codes. The payload is held in
// memory until VerifyEnable confirms possession of the secret.
func (l *Lifecycle) Enable(ctx context.Context) (*authapi.TwoFactorSetup, error) {
	var setup authapi.TwoFactorSetup
	if err := l.client.DoJSON(ctx, http.MethodPost, "/2fa/enable", nil, &setup); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.pending = &setup
	l.mu.Unlock()

	copied := setup
	return &copied, nil
}

// VerifyEnable confirms the pending setup with a code generated from the
// provisioned secret. On success the backup codes are returned for one-time
// display and the pending payload is dropped.
func (l *Lifecycle) VerifyEnable(ctx context.Context, code string) ([]string, error) {
	l.mu.Lock()
	pending := l.pending
	l.mu.Unlock()
	if pending == nil {
		return nil, NoPendingSetupErr
	}

	if _, err := l.client.Do(ctx, http.MethodPost, "/2fa/verify-enable", &authapi.VerifyEnableRequest{
		SetupToken: pending.SetupToken,
		Code:       code,
	}); err != nil {
		return nil, err
	}

	codes := pending.BackupCodes
	l.mu.Lock()
	l.pending = nil
	l.mu.Unlock()
	return codes, nil
}

// Disable turns 2FA off. This is a step-up confirmation: the account password
// and a currently valid code are both required.
func (l *Lifecycle) Disable(ctx context.Context, password, code string) error {
	_, err := l.client.Do(ctx, http.MethodPost, "/2fa/disable", &authapi.DisableTwoFactorRequest{
		Password: password,
		Code:     code,
	})
	return err
}

// RegenerateBackupCodes issues a fresh set of backup codes, invalidating all
// previously issued ones. Any cached prior codes are discarded before the new
// set is returned.
func (l *Lifecycle) RegenerateBackupCodes(ctx context.Context, code string) ([]string, error) {
	var result authapi.BackupCodesResult
	if err := l.client.DoJSON(ctx, http.MethodPost, "/2fa/regenerate-backup-codes", &authapi.RegenerateBackupCodesRequest{
		Code: code,
	}, &result); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.pending = nil
	l.mu.Unlock()
	return result.BackupCodes, nil
}

// BackupCodeStatus reports how many backup codes remain unused.
func (l *Lifecycle) BackupCodeStatus(ctx context.Context) (*authapi.BackupCodeStatus, error) {
	var status authapi.BackupCodeStatus
	if err := l.client.DoJSON(ctx, http.MethodGet, "/2fa/backup-codes/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
