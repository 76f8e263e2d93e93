package services

import (
	"droneview/internal/core/domain"
	"droneview/internal/core/ports"
)

// SessionService derives the logical session from the credential store.
// Pure derivation with no side effects: the snapshot is recomputed on
// every call because the store can mutate between navigations, for
// example through a forced logout after a 401 on an unrelated request.
type SessionService struct {
	store ports.CredentialStore
}

func NewSessionService(store ports.CredentialStore) *SessionService {
	return &SessionService{store: store}
}

func (s *SessionService) Snapshot() domain.SessionSnapshot {
	cred := s.store.Credential()

	snap := domain.SessionSnapshot{
		LoggedIn: cred.Token != "",
	}
	if cred.User != nil {
		snap.UserID = cred.User.ID
		snap.Username = cred.User.Username
		snap.Role = cred.User.Role
	}
	return snap
}
