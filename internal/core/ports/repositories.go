package ports

import (
	"context"

	"droneview/internal/core/domain"
)

// CredentialRepository is the durable store behind the credential service,
// the analog of the browser's local storage: written through on every
// mutation, read once at startup to reconstruct the session.
type CredentialRepository interface {
	Save(cred domain.Credential) error
	Load() (domain.Credential, error)
	Clear() error
}

// UserRepository backs the stub backend's account surface.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User, password string) error
	GetByUsername(ctx context.Context, username string) (*domain.User, string, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id domain.UserID) error
}

// DroneRepository backs the stub backend's drone CRUD.
type DroneRepository interface {
	Create(ctx context.Context, drone *domain.Drone) error
	GetByUser(ctx context.Context, userID domain.UserID) (*domain.Drone, error)
	List(ctx context.Context) ([]*domain.Drone, error)
	Update(ctx context.Context, drone *domain.Drone) error
}

// HistoryRepository keeps the latest frame per user plus a bounded
// history of uploads.
type HistoryRepository interface {
	PutLatest(ctx context.Context, userID domain.UserID, image []byte) (domain.ImageRecord, error)
	Latest(ctx context.Context, userID domain.UserID) ([]byte, error)
	History(ctx context.Context, userID domain.UserID, limit int) ([]domain.ImageRecord, error)
	Delete(ctx context.Context, userID domain.UserID, imageID string) error
}
