// Package postgres stores extracted records in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/srdcrawl/internal/config"
)

// Pool is the connection pool behind the record store. Every use of a new
// pool is preceded by a ping bounded by the configured health timeout.
type Pool struct {
	pool          *pgxpool.Pool
	healthTimeout time.Duration
}

// NewPool connects to the database described by cfg and checks its health.
//
// Precondition: cfg has passed config validation, so HealthTimeout > 0.
// Postcondition: Returns a Pool that answered a ping, or a non-nil error
// with no connections left open.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	p := &Pool{pool: pool, healthTimeout: cfg.HealthTimeout}
	if err := p.Health(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Open connects and returns the record store together with its close
// function.
//
// Postcondition: on success the caller must call the close function once
// the store is no longer needed.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*RecordRepository, func(), error) {
	p, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening record store on %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return p.Records(), p.Close, nil
}

// Health pings the database within the pool's health timeout.
func (p *Pool) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.healthTimeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database not healthy within %s: %w", p.healthTimeout, err)
	}
	return nil
}

// Records returns a RecordRepository over this pool.
func (p *Pool) Records() *RecordRepository {
	return NewRecordRepository(p.pool)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
