// Package database owns the process-wide SQL connection used by the document store.
// SQLite (ncruces, pure Go) is the default embedded backend; Postgres is reached through pgx.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/JaimeStill/flipbook/pkg/lifecycle"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrDisabled is returned by Open when the configured driver is "none".
var ErrDisabled = errors.New("database: disabled")

// System provides lazy, shared access to the configured database.
type System interface {
	// Open returns the shared connection, opening it on first use.
	// Concurrent callers all receive the same *sql.DB.
	Open(ctx context.Context) (*sql.DB, error)
	Dialect() Dialect
	// Start registers connection teardown with the coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	cfg    *Config
	logger *slog.Logger

	mu   sync.Mutex
	conn *sql.DB
}

// New creates a database system. No connection is made until Open.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	if err := cfg.Driver.Validate(); err != nil {
		return nil, err
	}
	return &database{
		cfg:    cfg,
		logger: logger.With("system", "database", "driver", cfg.Driver),
	}, nil
}

// FromConnection wraps an already open connection. Used by tools and tests
// that manage the *sql.DB themselves.
func FromConnection(conn *sql.DB, dialect Dialect, logger *slog.Logger) System {
	return &database{
		cfg:    &Config{Driver: dialect},
		logger: logger.With("system", "database", "driver", dialect),
		conn:   conn,
	}
}

func (d *database) Dialect() Dialect {
	return d.cfg.Driver
}

func (d *database) Open(ctx context.Context) (*sql.DB, error) {
	if d.cfg.Driver == None {
		return nil, ErrDisabled
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil {
		return d.conn, nil
	}

	if d.cfg.Driver == SQLite {
		if dir := filepath.Dir(d.cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open(d.cfg.DriverName(), d.cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(d.cfg.MaxOpenConns)
	conn.SetMaxIdleConns(d.cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(d.cfg.ConnMaxLifetimeDuration())

	pingCtx := ctx
	if timeout := d.cfg.ConnTimeoutDuration(); timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	d.logger.Info("database connection established")
	d.conn = conn
	return conn, nil
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown(func() {
		<-lc.Context().Done()

		d.mu.Lock()
		defer d.mu.Unlock()

		if d.conn == nil {
			return
		}
		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.conn = nil
		d.logger.Info("database connection closed")
	})
	return nil
}
