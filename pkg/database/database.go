// Package database owns the PostgreSQL pool and reports its readiness.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/intake/pkg/lifecycle"
)

// System manages the connection pool.
type System interface {
	// Connection returns the underlying database connection pool.
	Connection() *sql.DB
	// Start pings the database on startup and closes the pool on shutdown.
	Start(lc *lifecycle.Coordinator) error
	// Ready reports whether a ping has succeeded.
	Ready() bool
	// Check pings the database, returning ErrNotReady on failure.
	Check(ctx context.Context) error
}

type database struct {
	conn          *sql.DB
	logger        *slog.Logger
	connTimeout   time.Duration
	retries       int
	retryInterval time.Duration
	ready         atomic.Bool
}

// New opens the pool with the configured limits. No connection is made
// until Start runs.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	retries := cfg.ConnRetries
	if retries < 1 {
		retries = 1
	}

	return &database{
		conn:          db,
		logger:        logger.With("system", "database"),
		connTimeout:   cfg.ConnTimeoutDuration(),
		retries:       retries,
		retryInterval: cfg.RetryIntervalDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Ready() bool {
	return d.ready.Load()
}

func (d *database) Check(ctx context.Context) error {
	if d.connTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.connTimeout)
		defer cancel()
	}

	if err := d.conn.PingContext(ctx); err != nil {
		d.ready.Store(false)
		return fmt.Errorf("%w: %v", ErrNotReady, err)
	}

	d.ready.Store(true)
	return nil
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection")
	lc.Track("database", d)

	lc.OnStartup(func() {
		if err := d.connect(lc.Context()); err != nil {
			d.logger.Error("database unavailable", "attempts", d.retries, "error", err)
			return
		}
		d.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.ready.Store(false)

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database connection closed")
	})

	return nil
}

func (d *database) connect(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= d.retries; attempt++ {
		if err = d.Check(ctx); err == nil {
			return nil
		}
		if attempt == d.retries {
			break
		}

		d.logger.Warn("database ping failed", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.retryInterval):
		}
	}
	return err
}
