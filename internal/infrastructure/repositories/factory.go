package repositories

import (
	"context"

	"droneview/internal/core/ports"
	"droneview/internal/infrastructure/repositories/memory"
	redisrepo "droneview/internal/infrastructure/repositories/redis"
	"droneview/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories with fallback support
type RepositoryFactory struct {
	useRedis     bool
	redisClient  *redis.Client
	historyLimit int
	logger       *zap.SugaredLogger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis:     cfg.Storage.Backend == "redis",
		historyLimit: cfg.Storage.HistoryLimit,
		logger:       logger,
	}

	// Try to connect to Redis if enabled
	if factory.useRedis {
		client, err := redisrepo.NewRedisClient(
			cfg.Storage.Redis.Address,
			cfg.Storage.Redis.Password,
			cfg.Storage.Redis.DB,
			cfg.Storage.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

// CreateUserRepository creates a user repository (always memory: accounts
// are seeded at startup and hold no state worth persisting)
func (f *RepositoryFactory) CreateUserRepository() ports.UserRepository {
	return memory.NewMemoryUserRepository()
}

// CreateDroneRepository creates a drone repository (always memory)
func (f *RepositoryFactory) CreateDroneRepository() ports.DroneRepository {
	return memory.NewMemoryDroneRepository()
}

// CreateHistoryRepository creates a history repository (Redis or memory with fallback)
func (f *RepositoryFactory) CreateHistoryRepository() ports.HistoryRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisHistoryRepository(f.redisClient, f.historyLimit)
	}
	return memory.NewMemoryHistoryRepository(f.historyLimit)
}

// Close closes Redis connection if used
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck checks Redis connection health
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
