package memory

import (
	"context"
	"sync"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"
)

type MemoryDroneRepository struct {
	mu     sync.RWMutex
	drones map[domain.DroneID]*domain.Drone
}

func NewMemoryDroneRepository() ports.DroneRepository {
	return &MemoryDroneRepository{
		drones: make(map[domain.DroneID]*domain.Drone),
	}
}

func (r *MemoryDroneRepository) Create(ctx context.Context, drone *domain.Drone) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := *drone
	r.drones[d.ID] = &d
	return nil
}

func (r *MemoryDroneRepository) GetByUser(ctx context.Context, userID domain.UserID) (*domain.Drone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.drones {
		if d.UserID == userID {
			copied := *d
			return &copied, nil
		}
	}
	return nil, domain.ErrDroneNotFound
}

func (r *MemoryDroneRepository) List(ctx context.Context) ([]*domain.Drone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drones := make([]*domain.Drone, 0, len(r.drones))
	for _, d := range r.drones {
		copied := *d
		drones = append(drones, &copied)
	}
	return drones, nil
}

func (r *MemoryDroneRepository) Update(ctx context.Context, drone *domain.Drone) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drones[drone.ID]; !exists {
		return domain.ErrDroneNotFound
	}
	d := *drone
	r.drones[d.ID] = &d
	return nil
}
