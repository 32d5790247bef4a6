package contracts

import (
	"context"
	"time"
)

type RedisRepository interface {
	Delete(ctx context.Context, keys ...string) error
	Set(ctx context.Context, key string, value interface{}, exp time.Duration) error
	// Get returns "" and no error for a missing key.
	Get(ctx context.Context, key string) (string, error)
	TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error)
	Expire(ctx context.Context, key string, exp time.Duration) (bool, error)
	HashSet(ctx context.Context, key string, fields map[string]interface{}) error
	HashGetAll(ctx context.Context, key string) (map[string]string, error)
	SortedSetAdd(ctx context.Context, key string, score float64, member string) error
	// SortedSetRangeByScore lists members scored at most max, lowest first.
	SortedSetRangeByScore(ctx context.Context, key string, max float64, limit int) ([]string, error)
	SortedSetRemove(ctx context.Context, key string, members ...string) error
}
