package runledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Repository interface {
	MarkWritten(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	LedgerSize(ctx context.Context, prefix string) (int, error)
}

type RedisRepository struct {
	client *redis.Client
}

func NewRepository(client *redis.Client) Repository {
	return &RedisRepository{client: client}
}

// MarkWritten records a document as written exactly once. It returns false
// when the document was already marked by this or an earlier attempt.
func (r *RedisRepository) MarkWritten(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	first, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis SetNX failed: %w", err)
	}
	return first, nil
}

func (r *RedisRepository) LedgerSize(ctx context.Context, prefix string) (int, error) {
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	count := 0
	for iter.Next(ctx) {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan failed: %w", err)
	}
	return count, nil
}
