package services

import (
	"context"
	"errors"
	"sync"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"

	"go.uber.org/zap"
)

// CredentialService holds the current token and user profile. Every
// mutation is written through to the repository so a restarted client
// reconstructs its session without re-login. Login is fail-closed:
// nothing mutates unless the backend confirms success.
type CredentialService struct {
	backend ports.Backend
	repo    ports.CredentialRepository
	logger  *zap.Logger

	mu   sync.RWMutex
	cred domain.Credential
}

func NewCredentialService(backend ports.Backend, repo ports.CredentialRepository, logger *zap.Logger) *CredentialService {
	s := &CredentialService{
		backend: backend,
		repo:    repo,
		logger:  logger,
	}

	cred, err := repo.Load()
	if err != nil {
		logger.Warn("failed to load persisted credential", zap.Error(err))
		return s
	}
	if cred.User != nil {
		if _, err := domain.ParseRole(string(cred.User.Role)); err != nil {
			logger.Warn("persisted credential carries unknown role, discarding", zap.Error(err))
			return s
		}
	}
	s.cred = cred
	return s
}

// Login sends credentials to the backend. A success envelope applies
// token and user together; an application-level rejection returns
// (false, nil); a transport failure propagates with state untouched.
func (s *CredentialService) Login(ctx context.Context, creds domain.Credentials) (bool, error) {
	payload, err := s.backend.Login(ctx, creds)
	if err != nil {
		if errors.Is(err, domain.ErrRejected) {
			s.logger.Warn("login rejected", zap.String("username", creds.Username))
			return false, nil
		}
		s.logger.Error("login failed", zap.String("username", creds.Username), zap.Error(err))
		return false, err
	}

	role, err := domain.ParseRole(payload.Role)
	if err != nil {
		s.logger.Error("login payload carries unknown role", zap.String("role", payload.Role))
		return false, err
	}

	s.mu.Lock()
	s.cred = domain.Credential{
		Token: payload.Token,
		User: &domain.User{
			ID:       payload.UserID,
			Username: payload.Username,
			Role:     role,
		},
	}
	s.persistLocked()
	s.mu.Unlock()

	return true, nil
}

// Register creates an account. The result is boolean only; no local
// state changes either way.
func (s *CredentialService) Register(ctx context.Context, reg domain.Registration) (bool, error) {
	if err := s.backend.Register(ctx, reg); err != nil {
		if errors.Is(err, domain.ErrRejected) {
			return false, nil
		}
		s.logger.Error("registration failed", zap.String("username", reg.Username), zap.Error(err))
		return false, err
	}
	return true, nil
}

// SetToken overwrites the stored token. Clearing the token also clears
// the user: a token-less credential never carries a profile.
func (s *CredentialService) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred.Token = token
	if token == "" {
		s.cred.User = nil
	}
	s.persistLocked()
}

// SetUser overwrites the stored profile after validating the role.
func (s *CredentialService) SetUser(user *domain.User) error {
	if user != nil {
		if _, err := domain.ParseRole(string(user.Role)); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if user == nil {
		s.cred.User = nil
	} else {
		u := *user
		s.cred.User = &u
	}
	s.persistLocked()
	return nil
}

// Logout clears token and user together, in memory and on disk. Idempotent.
func (s *CredentialService) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred = domain.Credential{}
	if err := s.repo.Clear(); err != nil {
		s.logger.Warn("failed to clear persisted credential", zap.Error(err))
	}
}

// Credential returns a copy of the stored state.
func (s *CredentialService) Credential() domain.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred := s.cred
	if s.cred.User != nil {
		u := *s.cred.User
		cred.User = &u
	}
	return cred
}

// Token implements ports.TokenSource for the transport layer.
func (s *CredentialService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.Token
}

func (s *CredentialService) persistLocked() {
	if err := s.repo.Save(s.cred); err != nil {
		s.logger.Warn("failed to persist credential", zap.Error(err))
	}
}
