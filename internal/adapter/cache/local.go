package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/forecourt/backoffice/internal/ports"
)

// ErrMiss is returned by MemoryCache.Get for absent or expired keys.
// Callers treat any Get error as a miss, so the sentinel only matters
// for tests.
var ErrMiss = errors.New("cache miss")

type memoryEntry struct {
	data     string
	deadline int64 // unix nanoseconds, 0 means no expiry
}

func (e memoryEntry) expired(now int64) bool {
	return e.deadline != 0 && e.deadline <= now
}

// MemoryCache is the in-process fallback used when Redis is not
// reachable at boot. Expired entries are dropped lazily on read and by a
// background sweep, so the map never grows past the working set for
// long.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	done    chan struct{}
	log     *zap.Logger
}

// NewLocalCache starts a MemoryCache whose sweep runs every
// sweepInterval.
func NewLocalCache(sweepInterval time.Duration, log *zap.Logger) ports.Cache {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	c := &MemoryCache{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
		log:     log,
	}
	go c.sweepLoop(sweepInterval)

	log.Info("In-process cache initialized", zap.Duration("sweep_interval", sweepInterval))
	return c
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	now := time.Now().UnixNano()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", ErrMiss
	}
	if entry.expired(now) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have
		// refreshed the key since the read.
		if current, ok := c.entries[key]; ok && current.expired(now) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", ErrMiss
	}

	return entry.data, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encodeValue(value)
	if err != nil {
		return err
	}

	entry := memoryEntry{data: data}
	if expiration > 0 {
		entry.deadline = time.Now().Add(expiration).UnixNano()
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Ping() error { return nil }

func (c *MemoryCache) Close() error {
	close(c.done)
	return nil
}

func (c *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if dropped := c.sweep(); dropped > 0 {
				c.log.Debug("Swept expired cache entries", zap.Int("dropped", dropped))
			}
		case <-c.done:
			return
		}
	}
}

func (c *MemoryCache) sweep() int {
	now := time.Now().UnixNano()

	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

func encodeValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal cache value: %w", err)
		}
		return string(data), nil
	}
}
