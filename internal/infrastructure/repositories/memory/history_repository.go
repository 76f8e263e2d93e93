package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"
)

type userHistory struct {
	latest  []byte
	records []domain.ImageRecord
}

// MemoryHistoryRepository keeps the latest frame and a bounded list of
// history records per user. Oldest records fall off once limit is hit.
type MemoryHistoryRepository struct {
	mu     sync.RWMutex
	limit  int
	byUser map[domain.UserID]*userHistory
}

func NewMemoryHistoryRepository(limit int) ports.HistoryRepository {
	if limit <= 0 {
		limit = 50
	}
	return &MemoryHistoryRepository{
		limit:  limit,
		byUser: make(map[domain.UserID]*userHistory),
	}
}

func (r *MemoryHistoryRepository) PutLatest(ctx context.Context, userID domain.UserID, image []byte) (domain.ImageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.byUser[userID]
	if !ok {
		h = &userHistory{}
		r.byUser[userID] = h
	}

	h.latest = append([]byte(nil), image...)

	record := domain.ImageRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		Size:      len(image),
		CreatedAt: time.Now(),
	}
	h.records = append(h.records, record)
	if len(h.records) > r.limit {
		h.records = h.records[len(h.records)-r.limit:]
	}
	return record, nil
}

func (r *MemoryHistoryRepository) Latest(ctx context.Context, userID domain.UserID) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.byUser[userID]
	if !ok || len(h.latest) == 0 {
		return nil, domain.ErrImageNotFound
	}
	return append([]byte(nil), h.latest...), nil
}

func (r *MemoryHistoryRepository) History(ctx context.Context, userID domain.UserID, limit int) ([]domain.ImageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.byUser[userID]
	if !ok {
		return []domain.ImageRecord{}, nil
	}

	records := h.records
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	// newest first
	out := make([]domain.ImageRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

func (r *MemoryHistoryRepository) Delete(ctx context.Context, userID domain.UserID, imageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.byUser[userID]
	if !ok {
		return domain.ErrImageNotFound
	}
	for i, rec := range h.records {
		if rec.ID == imageID {
			h.records = append(h.records[:i], h.records[i+1:]...)
			return nil
		}
	}
	return domain.ErrImageNotFound
}
