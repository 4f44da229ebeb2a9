package database

import (
	"sync"
	"time"

	"github.com/STTM-NSU/advisor-workspace/internal/logger"
	"github.com/STTM-NSU/advisor-workspace/internal/metrics"
	"github.com/jmoiron/sqlx"
)

// Lease is an exclusive checkout of one pooled connection.
type Lease struct {
	Conn *sqlx.Conn

	pool     *Pool
	id       uint64
	acquired time.Time
	once     sync.Once
}

func (l *Lease) Pool() *Pool {
	return l.pool
}

func (l *Lease) Held() time.Duration {
	return time.Since(l.acquired)
}

// Release returns the connection to the pool. Calling it more than once is safe.
func (l *Lease) Release() error {
	var err error
	l.once.Do(func() {
		l.pool.leaks.untrack(l.id)
		err = l.Conn.Close()
	})
	return err
}

type leaseInfo struct {
	label    string
	acquired time.Time
	reported bool
}

type leakDetector struct {
	pool      string
	threshold time.Duration

	mu     sync.Mutex
	nextID uint64
	leases map[uint64]*leaseInfo

	logger logger.Logger
}

func newLeakDetector(pool string, threshold time.Duration, logger logger.Logger) *leakDetector {
	return &leakDetector{
		pool:      pool,
		threshold: threshold,
		leases:    make(map[uint64]*leaseInfo),
		logger:    logger,
	}
}

func (d *leakDetector) track(p *Pool, conn *sqlx.Conn, label string) *Lease {
	now := time.Now()

	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.leases[id] = &leaseInfo{label: label, acquired: now}
	d.mu.Unlock()

	return &Lease{Conn: conn, pool: p, id: id, acquired: now}
}

func (d *leakDetector) untrack(id uint64) {
	d.mu.Lock()
	info, ok := d.leases[id]
	delete(d.leases, id)
	d.mu.Unlock()

	if ok && info.reported {
		d.logger.Infof("previously reported connection (%s) returned after %s", info.label, time.Since(info.acquired).Round(time.Millisecond))
	}
}

// check warns once per lease held longer than the threshold and returns how many were newly reported.
func (d *leakDetector) check(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	reported := 0
	for id, info := range d.leases {
		if info.reported || now.Sub(info.acquired) < d.threshold {
			continue
		}
		info.reported = true
		reported++
		metrics.ConnectionLeaksTotal.WithLabelValues(d.pool).Inc()
		d.logger.Warnf("connection leak detection triggered: lease %d (%s) held for %s", id, info.label, now.Sub(info.acquired).Round(time.Millisecond))
	}
	return reported
}

func (d *leakDetector) outstanding() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.leases)
}
