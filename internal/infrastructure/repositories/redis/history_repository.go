package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"
)

// RedisHistoryRepository stores the latest frame per user as a plain key
// and the history records in a list, trimmed to the configured limit.
type RedisHistoryRepository struct {
	client *redis.Client
	prefix string
	limit  int
}

func NewRedisHistoryRepository(client *redis.Client, limit int) ports.HistoryRepository {
	if limit <= 0 {
		limit = 50
	}
	return &RedisHistoryRepository{
		client: client,
		prefix: "droneview:history:",
		limit:  limit,
	}
}

func (r *RedisHistoryRepository) latestKey(userID domain.UserID) string {
	return fmt.Sprintf("%slatest:%s", r.prefix, userID)
}

func (r *RedisHistoryRepository) recordsKey(userID domain.UserID) string {
	return fmt.Sprintf("%srecords:%s", r.prefix, userID)
}

func (r *RedisHistoryRepository) PutLatest(ctx context.Context, userID domain.UserID, image []byte) (domain.ImageRecord, error) {
	record := domain.ImageRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		Size:      len(image),
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return domain.ImageRecord{}, fmt.Errorf("failed to marshal image record: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.latestKey(userID), image, 0)
	pipe.LPush(ctx, r.recordsKey(userID), data)
	pipe.LTrim(ctx, r.recordsKey(userID), 0, int64(r.limit)-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.ImageRecord{}, fmt.Errorf("failed to store image in Redis: %w", err)
	}

	return record, nil
}

func (r *RedisHistoryRepository) Latest(ctx context.Context, userID domain.UserID) ([]byte, error) {
	data, err := r.client.Get(ctx, r.latestKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest image from Redis: %w", err)
	}
	return data, nil
}

func (r *RedisHistoryRepository) History(ctx context.Context, userID domain.UserID, limit int) ([]domain.ImageRecord, error) {
	if limit <= 0 || limit > r.limit {
		limit = r.limit
	}

	entries, err := r.client.LRange(ctx, r.recordsKey(userID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get image history from Redis: %w", err)
	}

	records := make([]domain.ImageRecord, 0, len(entries))
	for _, entry := range entries {
		var record domain.ImageRecord
		if err := json.Unmarshal([]byte(entry), &record); err != nil {
			// Skip records that fail to decode
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *RedisHistoryRepository) Delete(ctx context.Context, userID domain.UserID, imageID string) error {
	entries, err := r.client.LRange(ctx, r.recordsKey(userID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to get image history from Redis: %w", err)
	}

	for _, entry := range entries {
		var record domain.ImageRecord
		if err := json.Unmarshal([]byte(entry), &record); err != nil {
			continue
		}
		if record.ID == imageID {
			if err := r.client.LRem(ctx, r.recordsKey(userID), 1, entry).Err(); err != nil {
				return fmt.Errorf("failed to remove image record from Redis: %w", err)
			}
			return nil
		}
	}
	return domain.ErrImageNotFound
}
