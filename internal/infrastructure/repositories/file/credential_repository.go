package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"
)

// FileCredentialRepository persists the credential as JSON on disk, the
// console's analog of the browser's local storage: written through on
// every mutation, read once at startup.
type FileCredentialRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileCredentialRepository(path string) (ports.CredentialRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credential dir: %w", err)
	}
	return &FileCredentialRepository{path: path}, nil
}

func (r *FileCredentialRepository) Save(cred domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	// write-then-rename keeps a crash from leaving a torn file
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}
	return nil
}

func (r *FileCredentialRepository) Load() (domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return domain.Credential{}, nil
	}
	if err != nil {
		return domain.Credential{}, fmt.Errorf("failed to read credential: %w", err)
	}

	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return domain.Credential{}, fmt.Errorf("corrupt credential file: %w", err)
	}
	return cred, nil
}

func (r *FileCredentialRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}
