package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Store backed by Redis. Deadlines are native key expiries set
// with PEXPIREAT in the same transaction as the SET, so they keep millisecond
// precision and Sweep has nothing to do.
type Redis struct {
	rdb redis.UniversalClient
}

// NewRedis wraps an existing client. The client is owned by the caller.
func NewRedis(rdb redis.UniversalClient) *Redis {
	return &Redis{rdb: rdb}
}

func (s *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kvstore: redis get: %w", err)
	}

	return result, nil
}

func (s *Redis) Set(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, value, 0)
		pipe.PExpireAt(ctx, key, expiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("kvstore: redis set %q: %w", key, err)
	}

	return nil
}

func (s *Redis) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kvstore: redis delete: %w", err)
	}

	return nil
}

func (s *Redis) CompareAndDelete(ctx context.Context, key string, expected []byte) (bool, error) {
	n, err := compareAndDelete.Run(ctx, s.rdb, []string{key}, expected).Int()
	if err != nil {
		return false, fmt.Errorf("kvstore: redis compare and delete: %w", err)
	}

	return n == 1, nil
}

func (s *Redis) Sweep(context.Context) (int, error) {
	return 0, nil
}

// Close is a no-op; the client belongs to the caller.
func (s *Redis) Close() error {
	return nil
}
