package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sharedredis "campaign-server/internal/shared/redis"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps the document under a single key.
type RedisRepository struct {
	client *sharedredis.Client
	key    string
	logger *slog.Logger
}

func NewRedisRepository(client *sharedredis.Client, key string, logger *slog.Logger) *RedisRepository {
	logger.Debug("Initializing redis state repository", "key", key)
	return &RedisRepository{client: client, key: key, logger: logger}
}

func (r *RedisRepository) Name() string {
	return "redis"
}

func (r *RedisRepository) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.key, err)
	}
	return data, nil
}

func (r *RedisRepository) Save(ctx context.Context, data []byte) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key, data, 0)
		pipe.Set(ctx, r.key+":digest", DigestString(data), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	r.logger.Debug("Campaign state saved", "key", r.key, "bytes", len(data))
	return nil
}
