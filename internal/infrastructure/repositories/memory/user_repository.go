package memory

import (
	"context"
	"sync"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"
)

type MemoryUserRepository struct {
	mu        sync.RWMutex
	users     map[domain.UserID]*domain.User
	passwords map[domain.UserID]string
	byName    map[string]domain.UserID
}

func NewMemoryUserRepository() ports.UserRepository {
	return &MemoryUserRepository{
		users:     make(map[domain.UserID]*domain.User),
		passwords: make(map[domain.UserID]string),
		byName:    make(map[string]domain.UserID),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[user.Username]; exists {
		return domain.ErrUserExists
	}

	u := *user
	r.users[u.ID] = &u
	r.passwords[u.ID] = password
	r.byName[u.Username] = u.ID
	return nil
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byName[username]
	if !exists {
		return nil, "", domain.ErrUserNotFound
	}
	u := *r.users[id]
	return &u, r.passwords[id], nil
}

func (r *MemoryUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		users = append(users, &copied)
	}
	return users, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, exists := r.users[user.ID]
	if !exists {
		return domain.ErrUserNotFound
	}

	if old.Username != user.Username {
		delete(r.byName, old.Username)
		r.byName[user.Username] = user.ID
	}
	u := *user
	r.users[u.ID] = &u
	return nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, exists := r.users[id]
	if !exists {
		return domain.ErrUserNotFound
	}
	delete(r.byName, u.Username)
	delete(r.users, id)
	delete(r.passwords, id)
	return nil
}
