package store

import (
	"context"
	"fmt"

	"marketplace-service/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store is the persistence gateway over the marketplace database.
type Store struct {
	db *sqlx.DB
}

// NewStore opens and verifies a pooled Postgres connection.
func NewStore(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return New(db), nil
}

// New wraps an already opened handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
