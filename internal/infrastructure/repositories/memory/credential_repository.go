package memory

import (
	"sync"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"
)

// MemoryCredentialRepository keeps the credential only for the process
// lifetime; used by the agent, which re-authenticates on every start.
type MemoryCredentialRepository struct {
	mu   sync.RWMutex
	cred domain.Credential
}

func NewMemoryCredentialRepository() ports.CredentialRepository {
	return &MemoryCredentialRepository{}
}

func (r *MemoryCredentialRepository) Save(cred domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cred = cred
	return nil
}

func (r *MemoryCredentialRepository) Load() (domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cred, nil
}

func (r *MemoryCredentialRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cred = domain.Credential{}
	return nil
}
