package database

import (
	"context"
	"sync"
	"time"

	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jmoiron/sqlx"
)

// StatementCache keeps pool-level prepared statements in an LRU. database/sql re-prepares
// them lazily on the connection of the transaction that uses them; evicted statements
// are closed.
type StatementCache struct {
	db       *sqlx.DB
	sqlLimit int
	timeout  time.Duration
	pool     string

	cache *lru.Cache[string, *sqlx.Stmt]

	mu      sync.Mutex
	pending map[string]struct{}
	closed  bool
	wg      sync.WaitGroup

	logger logger.Logger
}

func NewStatementCache(db *sqlx.DB, size, sqlLimit int, timeout time.Duration, pool string, logger logger.Logger) (*StatementCache, error) {
	cache, err := lru.NewWithEvict[string, *sqlx.Stmt](size, func(_ string, stmt *sqlx.Stmt) {
		_ = stmt.Close()
	})
	if err != nil {
		return nil, err
	}

	return &StatementCache{
		db:       db,
		sqlLimit: sqlLimit,
		timeout:  timeout,
		pool:     pool,
		cache:    cache,
		pending:  make(map[string]struct{}),
		logger:   logger,
	}, nil
}

// Get returns the prepared statement for query, or nil when the caller should run it
// unprepared. A miss prepares the query in the background once a connection is free,
// so a caller holding a lease never waits on a second one.
func (c *StatementCache) Get(query string) *sqlx.Stmt {
	if len(query) > c.sqlLimit {
		metrics.StatementCacheTotal.WithLabelValues(c.pool, "skip").Inc()
		return nil
	}
	if stmt, ok := c.cache.Get(query); ok {
		metrics.StatementCacheTotal.WithLabelValues(c.pool, "hit").Inc()
		return stmt
	}
	metrics.StatementCacheTotal.WithLabelValues(c.pool, "miss").Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[query]; ok || c.closed {
		return nil
	}
	c.pending[query] = struct{}{}
	c.wg.Add(1)
	go c.prepare(query)

	return nil
}

func (c *StatementCache) prepare(query string) {
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	stmt, err := c.db.PreparexContext(ctx, query)

	c.mu.Lock()
	delete(c.pending, query)
	closed := c.closed
	c.mu.Unlock()

	switch {
	case err != nil:
		metrics.StatementCacheTotal.WithLabelValues(c.pool, "error").Inc()
		c.logger.Warnf("%s: can't prepare statement", err)
	case closed:
		_ = stmt.Close()
	default:
		c.cache.Add(query, stmt)
	}
}

// Wait blocks until background prepares have finished.
func (c *StatementCache) Wait() {
	c.wg.Wait()
}

func (c *StatementCache) Len() int {
	return c.cache.Len()
}

// Close stops new prepares, waits for the running ones and closes every cached statement.
func (c *StatementCache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
	c.cache.Purge()
}
