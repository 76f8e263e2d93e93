package services

import (
	"context"
	"sync"

	"droneview/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockBackend implements ports.Backend.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthPayload, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthPayload), args.Error(1)
}

func (m *MockBackend) Register(ctx context.Context, reg domain.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func (m *MockBackend) DroneInfo(ctx context.Context, userID domain.UserID) (*domain.Drone, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drone), args.Error(1)
}

func (m *MockBackend) AllDroneInfo(ctx context.Context) ([]*domain.Drone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Drone), args.Error(1)
}

func (m *MockBackend) CreateDrone(ctx context.Context, drone *domain.Drone) error {
	args := m.Called(ctx, drone)
	return args.Error(0)
}

func (m *MockBackend) UpdateDrone(ctx context.Context, drone *domain.Drone) error {
	args := m.Called(ctx, drone)
	return args.Error(0)
}

func (m *MockBackend) UploadImage(ctx context.Context, req domain.UploadRequest) (*domain.UploadResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadResult), args.Error(1)
}

func (m *MockBackend) Users(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockBackend) CreateUser(ctx context.Context, user *domain.User, password string) error {
	args := m.Called(ctx, user, password)
	return args.Error(0)
}

func (m *MockBackend) UpdateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockBackend) DeleteUser(ctx context.Context, id domain.UserID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBackend) Predict(ctx context.Context, req domain.PredictRequest) (*domain.PredictResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PredictResult), args.Error(1)
}

func (m *MockBackend) LatestImage(ctx context.Context, userID domain.UserID) ([]byte, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBackend) ImageHistory(ctx context.Context, userID domain.UserID, limit int) ([]domain.ImageRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ImageRecord), args.Error(1)
}

func (m *MockBackend) DeleteImage(ctx context.Context, userID domain.UserID, imageID string) error {
	args := m.Called(ctx, userID, imageID)
	return args.Error(0)
}

// fakeCredentialRepo is an in-memory stand-in for the durable store.
type fakeCredentialRepo struct {
	mu    sync.Mutex
	cred  domain.Credential
	saves int
}

func (r *fakeCredentialRepo) Save(cred domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cred = cred
	r.saves++
	return nil
}

func (r *fakeCredentialRepo) Load() (domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cred, nil
}

func (r *fakeCredentialRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cred = domain.Credential{}
	return nil
}
