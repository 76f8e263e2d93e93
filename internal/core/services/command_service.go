package services

import (
	"context"
	"sync"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"
	"droneview/internal/infrastructure/monitoring"

	"go.uber.org/zap"
)

const dataURIPrefix = "data:image/jpeg;base64,"

// CommandService performs the one-shot request/response operations and
// caches their results for display. On a success envelope the relevant
// slice of state is overwritten wholesale; on any failure the cache is
// left untouched and the error propagates. No retries: duplicate
// submission is the caller's problem.
type CommandService struct {
	backend ports.Backend
	metrics *monitoring.PrometheusCollector
	logger  *zap.Logger

	mu           sync.RWMutex
	currentDrone *domain.Drone
	drones       []*domain.Drone
	boxes        []domain.DetectionBox
	currentImage string
	users        []*domain.User
	history      []domain.ImageRecord
}

func NewCommandService(backend ports.Backend, metrics *monitoring.PrometheusCollector, logger *zap.Logger) *CommandService {
	return &CommandService{
		backend: backend,
		metrics: metrics,
		logger:  logger,
	}
}

// UploadImage sends one frame for detection. Success overwrites both the
// detection boxes and the annotated image, stored as a data URI.
func (s *CommandService) UploadImage(ctx context.Context, req domain.UploadRequest) error {
	res, err := s.backend.UploadImage(ctx, req)
	if err != nil {
		s.logger.Warn("image upload failed", zap.Error(err))
		return err
	}

	boxes := res.Boxes
	if boxes == nil {
		boxes = []domain.DetectionBox{}
	}

	s.mu.Lock()
	s.boxes = boxes
	s.currentImage = dataURIPrefix + res.Image
	s.mu.Unlock()

	s.metrics.RecordUpload()
	return nil
}

func (s *CommandService) GetDroneInfo(ctx context.Context, userID domain.UserID) (*domain.Drone, error) {
	drone, err := s.backend.DroneInfo(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.currentDrone = drone
	s.mu.Unlock()
	return drone, nil
}

func (s *CommandService) GetAllDroneInfo(ctx context.Context) ([]*domain.Drone, error) {
	drones, err := s.backend.AllDroneInfo(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.drones = drones
	s.mu.Unlock()
	return drones, nil
}

func (s *CommandService) CreateDrone(ctx context.Context, drone *domain.Drone) error {
	return s.backend.CreateDrone(ctx, drone)
}

func (s *CommandService) UpdateDrone(ctx context.Context, drone *domain.Drone) error {
	return s.backend.UpdateDrone(ctx, drone)
}

func (s *CommandService) Predict(ctx context.Context, req domain.PredictRequest) (*domain.PredictResult, error) {
	return s.backend.Predict(ctx, req)
}

func (s *CommandService) GetImageHistory(ctx context.Context, userID domain.UserID, limit int) ([]domain.ImageRecord, error) {
	records, err := s.backend.ImageHistory(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.history = records
	s.mu.Unlock()
	return records, nil
}

func (s *CommandService) DeleteImage(ctx context.Context, userID domain.UserID, imageID string) error {
	if err := s.backend.DeleteImage(ctx, userID, imageID); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.history[:0]
	for _, rec := range s.history {
		if rec.ID != imageID {
			kept = append(kept, rec)
		}
	}
	s.history = kept
	s.mu.Unlock()
	return nil
}

func (s *CommandService) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.backend.Users(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return users, nil
}

func (s *CommandService) CreateUser(ctx context.Context, user *domain.User, password string) error {
	if err := s.backend.CreateUser(ctx, user, password); err != nil {
		return err
	}

	s.mu.Lock()
	s.users = append(s.users, user)
	s.mu.Unlock()
	return nil
}

func (s *CommandService) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := s.backend.UpdateUser(ctx, user); err != nil {
		return err
	}

	s.mu.Lock()
	for i, u := range s.users {
		if u.ID == user.ID {
			s.users[i] = user
			break
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *CommandService) DeleteUser(ctx context.Context, id domain.UserID) error {
	if err := s.backend.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.users[:0]
	for _, u := range s.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	s.users = kept
	s.mu.Unlock()
	return nil
}

// Clear wipes the drone/box/image cache; called on stream reset when the
// operator switches context.
func (s *CommandService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentDrone = nil
	s.boxes = nil
	s.currentImage = ""
}

func (s *CommandService) CurrentDrone() *domain.Drone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDrone
}

func (s *CommandService) Drones() []*domain.Drone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drones
}

func (s *CommandService) Boxes() []domain.DetectionBox {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boxes
}

func (s *CommandService) CurrentImage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentImage
}

func (s *CommandService) Users() []*domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users
}

func (s *CommandService) History() []domain.ImageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history
}
