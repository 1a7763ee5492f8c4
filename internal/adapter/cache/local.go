package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/ports"
)

type localEntry struct {
	value     string
	expiresAt time.Time
}

func (e localEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// LocalCache is the in-process fallback used when Redis is unreachable at
// startup. Reads evict lazily; a janitor sweeps the rest on an interval.
type LocalCache struct {
	mu      sync.RWMutex
	entries map[string]localEntry
	log     *zap.Logger
	done    chan struct{}
}

func NewLocalCache(sweepInterval time.Duration, log *zap.Logger) ports.Cache {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	c := &LocalCache{
		entries: make(map[string]localEntry),
		log:     log,
		done:    make(chan struct{}),
	}
	go c.janitor(sweepInterval)

	log.Info("Using local in-memory cache", zap.Duration("sweep_interval", sweepInterval))
	return c
}

func (c *LocalCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("key not found: %s", key)
	}
	if entry.expired(time.Now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", fmt.Errorf("key not found: %s", key)
	}
	return entry.value, nil
}

func (c *LocalCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	str, err := stringify(value)
	if err != nil {
		return err
	}

	entry := localEntry{value: str}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Ping() error { return nil }

func (c *LocalCache) Close() error {
	close(c.done)
	return nil
}

func stringify(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal value: %w", err)
		}
		return string(data), nil
	}
}

func (c *LocalCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep(time.Now())
		case <-c.done:
			return
		}
	}
}

func (c *LocalCache) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	swept := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			swept++
		}
	}
	if swept > 0 {
		c.log.Debug("Swept expired cache entries", zap.Int("count", swept))
	}
}
