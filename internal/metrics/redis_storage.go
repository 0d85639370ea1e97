package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKey = "moodlog:metrics:counters"

// RedisStorage provides Redis-backed persistence for metric counters.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage connects to Redis and verifies the connection.
func NewRedisStorage(url string) (*RedisStorage, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisStorage{client: client}, nil
}

func (rs *RedisStorage) Incr(ctx context.Context, field string, delta int64) error {
	if err := rs.client.HIncrBy(ctx, redisKey, field, delta).Err(); err != nil {
		return fmt.Errorf("incrementing counter: %w", err)
	}
	return nil
}

func (rs *RedisStorage) Load(ctx context.Context) (map[string]int64, error) {
	values, err := rs.client.HGetAll(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("loading counters: %w", err)
	}

	counters := make(map[string]int64, len(values))
	for field, raw := range values {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			// Skip invalid entries
			continue
		}
		counters[field] = v
	}
	return counters, nil
}

func (rs *RedisStorage) Close() error {
	return rs.client.Close()
}
