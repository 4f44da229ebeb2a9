package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/STTM-NSU/advisor-workspace/internal/config"
	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/metrics"
	"github.com/jmoiron/sqlx"
)

var (
	ErrAcquireTimeout = errors.New("connection acquisition timed out")
	ErrPoolClosed     = errors.New("pool is closed")
)

// Pool is a capped sqlx pool handing out exclusive leases.
type Pool struct {
	name     string
	db       *sqlx.DB
	dialect  Dialect
	cfg      config.PoolConfig
	readOnly bool

	stmts *StatementCache
	leaks *leakDetector

	mu     sync.RWMutex
	closed bool

	logger logger.Logger
}

type Options struct {
	Name       string
	Pool       config.PoolConfig
	Statements config.StatementCacheConfig
	ReadOnly   bool
}

// Open connects to the database described by dbCfg and warms minimum-idle connections.
func Open(ctx context.Context, dbCfg *Config, opts Options, logger logger.Logger) (*Pool, error) {
	db, err := sqlx.Open(dbCfg.DriverName(), dbCfg.String())
	if err != nil {
		return nil, fmt.Errorf("%w: can't open %s pool", err, opts.Name)
	}

	p, err := NewPool(db, dbCfg.Dialect, opts, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.Pool.ConnectionTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("%w: can't ping %s (%s)", err, opts.Name, dbCfg.Redacted())
	}

	p.warm(ctx)
	p.logger.Infof("pool %s ready: max=%d minIdle=%d readOnly=%t", opts.Name, opts.Pool.MaximumPoolSize, opts.Pool.MinimumIdle, opts.ReadOnly)

	return p, nil
}

// NewPool wraps an already opened handle and applies the caps.
func NewPool(db *sqlx.DB, dialect Dialect, opts Options, logger logger.Logger) (*Pool, error) {
	opts.Pool.Setup()

	db.SetMaxOpenConns(opts.Pool.MaximumPoolSize)
	db.SetMaxIdleConns(opts.Pool.MinimumIdle)
	db.SetConnMaxIdleTime(opts.Pool.IdleTimeout)
	db.SetConnMaxLifetime(opts.Pool.MaxLifetime)

	l := logger.With("component", "pool", "pool", opts.Name)
	p := &Pool{
		name:     opts.Name,
		db:       db,
		dialect:  dialect,
		cfg:      opts.Pool,
		readOnly: opts.ReadOnly,
		leaks:    newLeakDetector(opts.Name, opts.Pool.LeakDetectionThreshold, l),
		logger:   l,
	}

	if opts.Statements.Enabled != nil && *opts.Statements.Enabled {
		stmts, err := NewStatementCache(db, opts.Statements.Size, opts.Statements.SQLLimit, opts.Pool.ConnectionTimeout, opts.Name, l)
		if err != nil {
			return nil, fmt.Errorf("%w: can't create statement cache", err)
		}
		p.stmts = stmts
	}

	return p, nil
}

func (p *Pool) warm(ctx context.Context) {
	leases := make([]*Lease, 0, p.cfg.MinimumIdle)
	for range p.cfg.MinimumIdle {
		l, err := p.Acquire(ctx, "warmup")
		if err != nil {
			p.logger.Warnf("%s: can't warm connection", err)
			break
		}
		leases = append(leases, l)
	}
	for _, l := range leases {
		_ = l.Release()
	}
}

func (p *Pool) Name() string {
	return p.name
}

func (p *Pool) DB() *sqlx.DB {
	return p.db
}

func (p *Pool) Dialect() Dialect {
	return p.dialect
}

func (p *Pool) ReadOnly() bool {
	return p.readOnly
}

// Statements returns the prepared-statement cache, nil when disabled.
func (p *Pool) Statements() *StatementCache {
	return p.stmts
}

// Acquire checks out one connection within the connection timeout. The lease must be
// released on every path.
func (p *Pool) Acquire(ctx context.Context, label string) (*Lease, error) {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return nil, ErrPoolClosed
	}

	timer := metrics.NewTimer(metrics.ConnectionAcquireDuration.WithLabelValues(p.name))
	acquireCtx, cancel := context.WithTimeout(ctx, p.cfg.ConnectionTimeout)
	defer cancel()

	conn, err := p.db.Connx(acquireCtx)
	waited := timer.ObserveDuration()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: pool %s after %s", ErrAcquireTimeout, p.name, waited.Round(time.Millisecond))
		}
		return nil, fmt.Errorf("%w: can't acquire connection from %s", err, p.name)
	}

	return p.leaks.track(p, conn, label), nil
}

func (p *Pool) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ConnectionTimeout)
	defer cancel()
	return p.db.PingContext(ctx)
}

// RunLeakDetector reports leases held past the threshold until ctx is done.
func (p *Pool) RunLeakDetector(ctx context.Context) {
	interval := max(p.cfg.LeakDetectionThreshold/4, 10*time.Millisecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			p.leaks.check(now)
		}
	}
}

// Outstanding is the number of leases not yet released.
func (p *Pool) Outstanding() int {
	return p.leaks.outstanding()
}

func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	if p.stmts != nil {
		p.stmts.Close()
	}
	if n := p.leaks.outstanding(); n > 0 {
		p.logger.Warnf("closing pool with %d outstanding leases", n)
	}
	return p.db.Close()
}
