package ports

import (
	"context"
	"time"
)

// Cache is the key-value cache used for previous-shift snapshots and
// customer lists.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
