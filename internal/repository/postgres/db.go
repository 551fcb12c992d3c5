package postgres

import (
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"scantab/internal/config"
)

// NewDB creates a new PostgreSQL connection pool.
//
// The queue worker holds a connection for the duration of each SKIP LOCKED
// claim, so the pool must be at least one larger than the worker concurrency
// or API traffic can starve the worker.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	// Recycle connections so long-idle ones don't outlive LB timeouts.
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
