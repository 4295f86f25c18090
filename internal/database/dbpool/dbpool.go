// Package dbpool builds the shared PostgreSQL connection pool from validated
// pool settings.
//
// Construction is eager: the pool verifies connectivity before it is handed
// out, bounded by the connect timeout. A misconfigured or unreachable
// database therefore fails the process at startup instead of surfacing on
// the first query.
package dbpool

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsekit/pulse/internal/config"
)

// ErrorKind discriminates pool construction failures.
type ErrorKind int

const (
	// KindInvalidConnectionString marks a DSN pgx could not parse.
	KindInvalidConnectionString ErrorKind = iota
	// KindTimeout marks a connection attempt that exceeded the connect
	// timeout.
	KindTimeout
	// KindUnreachable marks a database that refused or failed the
	// connection attempt within the timeout.
	KindUnreachable
)

// PoolError is the canonical pool construction failure.
type PoolError struct {
	Kind ErrorKind
	Err  error
}

func (e *PoolError) Error() string {
	switch e.Kind {
	case KindInvalidConnectionString:
		return fmt.Sprintf("pool: invalid connection string: %v", e.Err)
	case KindTimeout:
		return fmt.Sprintf("pool: connection attempt timed out: %v", e.Err)
	default:
		return fmt.Sprintf("pool: database unreachable: %v", e.Err)
	}
}

func (e *PoolError) Unwrap() error { return e.Err }

// Configure translates PoolSettings into a pgxpool configuration. A zero
// idle timeout or lifetime disables the corresponding recycling by pushing
// the bound out beyond any process lifetime.
func Configure(databaseURL string, s config.PoolSettings) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, &PoolError{Kind: KindInvalidConnectionString, Err: err}
	}

	cfg.MaxConns = int32(s.MaxConns)
	cfg.MinConns = int32(s.MinConns)
	cfg.ConnConfig.ConnectTimeout = s.ConnectTimeout

	cfg.MaxConnIdleTime = s.IdleTimeout
	if s.IdleTimeout == 0 {
		cfg.MaxConnIdleTime = math.MaxInt64
	}
	cfg.MaxConnLifetime = s.MaxLifetime
	if s.MaxLifetime == 0 {
		cfg.MaxConnLifetime = math.MaxInt64
	}

	return cfg, nil
}

// Pool is the shared database handle. A *Pool is handed to every
// collaborator; all of them observe the same open/closed state.
type Pool struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
	closed         atomic.Bool
}

// New constructs the pool and eagerly verifies connectivity, bounded by the
// connect timeout. All failures are *PoolError.
func New(ctx context.Context, databaseURL string, s config.PoolSettings) (*Pool, error) {
	cfg, err := Configure(databaseURL, s)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, &PoolError{Kind: KindInvalidConnectionString, Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &PoolError{Kind: KindTimeout, Err: err}
		}
		return nil, &PoolError{Kind: KindUnreachable, Err: err}
	}

	return &Pool{pool: pool, acquireTimeout: s.AcquireTimeout}, nil
}

// DB returns the underlying pgx pool for query execution.
func (p *Pool) DB() *pgxpool.Pool { return p.pool }

// Ping is the lightweight connectivity probe exposed to the health check,
// bounded by the acquire timeout.
func (p *Pool) Ping(ctx context.Context) error {
	if p.Closed() {
		return errors.New("pool is closed")
	}
	ctx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Closed reports whether Close has been called. It never blocks.
func (p *Pool) Closed() bool { return p.closed.Load() }

// Close releases every pooled connection. Later calls are no-ops.
func (p *Pool) Close() {
	if p.closed.CompareAndSwap(false, true) {
		p.pool.Close()
	}
}
