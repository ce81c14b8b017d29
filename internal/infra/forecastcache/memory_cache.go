package forecastcache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
)

type entry struct {
	samples   []schedule.WeatherSample
	expiresAt time.Time
}

// MemoryCache is an in-memory forecast cache for tests/dev.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache constructs a cache backed by process memory.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]entry), now: time.Now}
}

// Get implements planner.ForecastCache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]schedule.WeatherSample, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && e.expiresAt.Before(c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return append([]schedule.WeatherSample(nil), e.samples...), true, nil
}

// Set stores the samples with an optional TTL.
func (c *MemoryCache) Set(_ context.Context, key string, samples []schedule.WeatherSample, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.entries[key] = entry{samples: append([]schedule.WeatherSample(nil), samples...), expiresAt: exp}
	return nil
}

var _ planner.ForecastCache = (*MemoryCache)(nil)
