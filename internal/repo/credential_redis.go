package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisCredentialPrefix = "dashboard:credential:"

// RedisCredentialRepository stores credentials as plain Redis strings with a TTL.
type RedisCredentialRepository struct {
	rdb *redis.Client
}

func NewRedisCredentialRepository(rdb *redis.Client) *RedisCredentialRepository {
	return &RedisCredentialRepository{rdb: rdb}
}

func (r *RedisCredentialRepository) Load(ctx context.Context, sessionID, key string) (string, error) {
	token, err := r.rdb.Get(ctx, redisCredentialPrefix+credentialKey(sessionID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCredentialNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load credential: %w", err)
	}
	return token, nil
}

func (r *RedisCredentialRepository) Save(ctx context.Context, sessionID, key, token string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, redisCredentialPrefix+credentialKey(sessionID, key), token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (r *RedisCredentialRepository) Delete(ctx context.Context, sessionID, key string) error {
	if err := r.rdb.Del(ctx, redisCredentialPrefix+credentialKey(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
