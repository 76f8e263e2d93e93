package ports

import (
	"context"

	"droneview/internal/core/domain"
)

// Backend is the remote monitoring API as seen by the client services.
// Application-level rejections (envelope code != 200) surface as
// domain.ErrRejected; transport failures come back unwrapped.
type Backend interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthPayload, error)
	Register(ctx context.Context, reg domain.Registration) error

	DroneInfo(ctx context.Context, userID domain.UserID) (*domain.Drone, error)
	AllDroneInfo(ctx context.Context) ([]*domain.Drone, error)
	CreateDrone(ctx context.Context, drone *domain.Drone) error
	UpdateDrone(ctx context.Context, drone *domain.Drone) error
	UploadImage(ctx context.Context, req domain.UploadRequest) (*domain.UploadResult, error)

	Users(ctx context.Context) ([]*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User, password string) error
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id domain.UserID) error

	Predict(ctx context.Context, req domain.PredictRequest) (*domain.PredictResult, error)
	LatestImage(ctx context.Context, userID domain.UserID) ([]byte, error)
	ImageHistory(ctx context.Context, userID domain.UserID, limit int) ([]domain.ImageRecord, error)
	DeleteImage(ctx context.Context, userID domain.UserID, imageID string) error
}

// TokenSource supplies the bearer token injected on control-plane requests.
type TokenSource interface {
	Token() string
}
