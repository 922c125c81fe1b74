package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryReportCache keeps entries in process memory. Versions never expire;
// report entries expire after the TTL.
type MemoryReportCache struct {
	entries *gocache.Cache
	ttl     time.Duration
}

var _ ReportCache = (*MemoryReportCache)(nil)

// NewMemoryReportCache creates a memory cache purging expired entries every
// two TTLs.
func NewMemoryReportCache(ttl time.Duration) *MemoryReportCache {
	ttl = defaultTTL(ttl)
	return &MemoryReportCache{
		entries: gocache.New(ttl, 2*ttl),
		ttl:     ttl,
	}
}

// Get implements ReportCache.
func (c *MemoryReportCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, found := c.entries.Get(key)
	if !found {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	return data, ok, nil
}

// Set implements ReportCache.
func (c *MemoryReportCache) Set(_ context.Context, key string, value []byte) error {
	c.entries.Set(key, value, gocache.DefaultExpiration)
	return nil
}

// Version implements ReportCache.
func (c *MemoryReportCache) Version(_ context.Context, userID int64) (int64, error) {
	v, found := c.entries.Get(versionKey(userID))
	if !found {
		return 0, nil
	}
	n, _ := v.(int64)
	return n, nil
}

// Bump implements ReportCache.
func (c *MemoryReportCache) Bump(_ context.Context, userID int64) error {
	key := versionKey(userID)
	if _, err := c.entries.IncrementInt64(key, 1); err == nil {
		return nil
	}
	if err := c.entries.Add(key, int64(1), gocache.NoExpiration); err == nil {
		return nil
	}
	// Another goroutine created the key between the two calls.
	_, err := c.entries.IncrementInt64(key, 1)
	return err
}

// Close implements ReportCache.
func (c *MemoryReportCache) Close() error {
	c.entries.Flush()
	return nil
}
