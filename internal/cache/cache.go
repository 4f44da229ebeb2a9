package cache

import (
	"context"

	"github.com/STTM-NSU/advisor-workspace/internal/config"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Cache is a read-through TTL cache for one query family. Failed loads are never stored.
// Entries expire after the TTL and the least recently used ones go first once the
// cache is full.
type Cache[V any] struct {
	name    string
	enabled bool

	lru   *expirable.LRU[string, V]
	group singleflight.Group

	logger logger.Logger
}

func New[V any](name string, cfg config.CacheConfig, logger logger.Logger) *Cache[V] {
	cfg.Setup()
	entries := metrics.CacheEntries.WithLabelValues(name)
	onEvict := func(string, V) { entries.Dec() }

	return &Cache[V]{
		name:    name,
		enabled: *cfg.Enabled,
		lru:     expirable.NewLRU[string, V](cfg.MaxEntries, onEvict, cfg.TTL),
		logger:  logger.With("component", "cache", "cache", name),
	}
}

func (c *Cache[V]) Name() string {
	return c.name
}

func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

func (c *Cache[V]) Set(key string, value V) {
	if !c.enabled {
		return
	}
	c.lru.Add(key, value)
	c.syncGauge()
}

// GetOrLoad returns the cached value for key or calls load once for all concurrent
// callers of the same key. The load outlives a cancelled caller so other waiters
// still get its result.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (V, error)) (V, error) {
	if !c.enabled {
		metrics.CacheLookupsTotal.WithLabelValues(c.name, "bypass").Inc()
		return load(ctx)
	}
	if v, ok := c.Get(key); ok {
		metrics.CacheLookupsTotal.WithLabelValues(c.name, "hit").Inc()
		return v, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues(c.name, "miss").Inc()

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		c.Set(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		if res.Shared {
			c.logger.Debugf("shared load for key %s", key)
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func (c *Cache[V]) Delete(key string) {
	c.lru.Remove(key)
	c.syncGauge()
}

func (c *Cache[V]) Purge() {
	c.lru.Purge()
	c.syncGauge()
}

// Len counts live entries; expired ones are left out even before the LRU drops them.
func (c *Cache[V]) Len() int {
	return len(c.lru.Keys())
}

func (c *Cache[V]) syncGauge() {
	metrics.CacheEntries.WithLabelValues(c.name).Set(float64(c.lru.Len()))
}
