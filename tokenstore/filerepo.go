package tokenstore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileRepo persists credentials as a JSON file readable only by the current
// user. It is the desktop analogue of the browser's origin-scoped storage:
// credentials survive a restart but never leave this installation.
type FileRepo struct {
	path string
}

// NewFileRepo creates a FileRepo at the given path.
func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

// Load reads the persisted credentials. A missing file is not an error: it
// returns nil credentials.
func (r *FileRepo) Load() (*Credentials, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileRepo.Load] ReadFile")
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		// A corrupt credentials file is discarded, not fatal.
		return nil, nil
	}
	return &creds, nil
}

// Save writes the credentials with owner-only permissions.
func (r *FileRepo) Save(creds *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] MkdirAll")
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return errors.Wrap(err, "[FileRepo.Save] Marshal")
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] WriteFile")
	}
	return nil
}

// Clear removes the credentials file. A file that is already gone is fine.
func (r *FileRepo) Clear() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileRepo.Clear] Remove")
	}
	return nil
}
