package stock

import (
	"context"
	"time"
)

// Locker serializes mutation of one product's records across workers.
// Satisfied by cache.RedisClient.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}
